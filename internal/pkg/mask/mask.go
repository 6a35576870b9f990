// Package mask formats Brazilian document numbers, phones, dates and money for
// display while the user types, and strips the formatting back to digits.
package mask

import "strings"

// Digits strips every non-digit character
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func capDigits(s string, max int) string {
	d := Digits(s)
	if len(d) > max {
		return d[:max]
	}
	return d
}
