package mask

import "strings"

// PhoneLength is the digit count of a mobile number with area code
const PhoneLength = 11

// MaskPhone formats a phone as (00) 00000-0000, degrading for partial input
func MaskPhone(value string) string {
	n := capDigits(value, PhoneLength)

	switch {
	case len(n) == 0:
		return ""
	case len(n) <= 2:
		return "(" + n
	case len(n) <= 7:
		return "(" + n[:2] + ") " + n[2:]
	default:
		return "(" + n[:2] + ") " + n[2:7] + "-" + n[7:]
	}
}

// UnmaskPhone removes the phone formatting
func UnmaskPhone(value string) string {
	return Digits(value)
}

// FormatPhoneWithCountryCode prefixes +55 when the digits carry the Brazilian country code
func FormatPhoneWithCountryCode(value string) string {
	n := Digits(value)
	if strings.HasPrefix(n, "55") && len(n) > 2 {
		return "+55 " + MaskPhone(n[2:])
	}
	return MaskPhone(n)
}
