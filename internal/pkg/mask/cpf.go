package mask

// CPFLength is the digit count of a complete CPF
const CPFLength = 11

// MaskCPF formats a CPF progressively as 000.000.000-00
func MaskCPF(value string) string {
	n := capDigits(value, CPFLength)

	switch {
	case len(n) <= 3:
		return n
	case len(n) <= 6:
		return n[:3] + "." + n[3:]
	case len(n) <= 9:
		return n[:3] + "." + n[3:6] + "." + n[6:]
	default:
		return n[:3] + "." + n[3:6] + "." + n[6:9] + "-" + n[9:]
	}
}

// UnmaskCPF removes the CPF formatting
func UnmaskCPF(value string) string {
	return Digits(value)
}

// IsValidCPF checks length, repeated digits and both modulo-11 check digits
func IsValidCPF(value string) bool {
	cpf := Digits(value)
	if len(cpf) != CPFLength {
		return false
	}

	allEqual := true
	for i := 1; i < len(cpf); i++ {
		if cpf[i] != cpf[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return false
	}

	return checkDigit(cpf[:9]) == int(cpf[9]-'0') &&
		checkDigit(cpf[:10]) == int(cpf[10]-'0')
}

// checkDigit computes the modulo-11 verifier for the given prefix (9 or 10 digits)
func checkDigit(prefix string) int {
	sum := 0
	weight := len(prefix) + 1
	for i := 0; i < len(prefix); i++ {
		sum += int(prefix[i]-'0') * (weight - i)
	}

	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}
