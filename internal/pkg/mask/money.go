package mask

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// FormatMoney renders an amount in Brazilian reais, e.g. R$ 1.234,56
func FormatMoney(amount float64) string {
	if amount < 0 {
		return "-" + FormatMoney(-amount)
	}
	p := message.NewPrinter(language.BrazilianPortuguese)
	return "R$ " + p.Sprintf("%v", number.Decimal(amount, number.Scale(2)))
}

// MaskMoney interprets the digits of value as cents and formats them
func MaskMoney(value string) string {
	return FormatMoney(UnmaskMoney(value))
}

// UnmaskMoney recovers the amount from a masked value by reading its digits as cents
func UnmaskMoney(value string) float64 {
	n := Digits(value)
	if n == "" {
		return 0
	}
	cents, err := strconv.ParseInt(n, 10, 64)
	if err != nil {
		return 0
	}
	return float64(cents) / 100
}
