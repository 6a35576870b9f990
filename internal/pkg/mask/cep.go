package mask

// MaskCEP formats a postal code as 00000-000
func MaskCEP(value string) string {
	n := capDigits(value, 8)
	if len(n) <= 5 {
		return n
	}
	return n[:5] + "-" + n[5:]
}

// UnmaskCEP removes the postal code formatting
func UnmaskCEP(value string) string {
	return Digits(value)
}
