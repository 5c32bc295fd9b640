// Package money renders decimal amounts the way they appear on printed
// quotes, "$1,234.56".
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Format renders the amount with a currency sign, thousand separators
// and two decimals.
func Format(amount decimal.Decimal) string {
	fixed := amount.Round(2).StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	grouped := group(parts[0])

	var b strings.Builder
	if negative {
		b.WriteString("-")
	}
	b.WriteString("$")
	b.WriteString(grouped)
	b.WriteString(".")
	b.WriteString(parts[1])
	return b.String()
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
