package render

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money formats a price as dollars with thousands separators, e.g. $4,800,000.00.
func Money(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	s := d.StringFixed(2)
	whole, frac := s[:len(s)-3], s[len(s)-3:]
	return sign + "$" + group(whole) + frac
}

// Pct formats an absolute percentage with two decimals.
func Pct(v float64) string {
	return decimal.NewFromFloat(v).Abs().StringFixed(2)
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
