package mask

// RGLength is the digit count accepted for an RG
const RGLength = 7

// MaskRG formats an RG progressively as 0.000.000
func MaskRG(value string) string {
	n := capDigits(value, RGLength)

	switch {
	case len(n) <= 1:
		return n
	case len(n) <= 4:
		return n[:1] + "." + n[1:]
	default:
		return n[:1] + "." + n[1:4] + "." + n[4:]
	}
}

// UnmaskRG removes the RG formatting
func UnmaskRG(value string) string {
	return Digits(value)
}

// IsValidRG reports whether the RG has exactly RGLength digits
func IsValidRG(value string) bool {
	return len(Digits(value)) == RGLength
}
