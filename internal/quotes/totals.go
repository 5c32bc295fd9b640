package quotes

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Totals carries the persisted money columns of a quote. Every value is
// rounded to 2 decimals, so total == (subtotal - discount) * (1 + tax/100)
// holds over the stored representation.
type Totals struct {
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxAmount     decimal.Decimal
	Total         decimal.Decimal
}

// LineSubtotal computes a rounded quantity * unit price.
func LineSubtotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(2)
}

// ComputeTotals applies the zone discount to the line sum, then the tax rate
// to the discounted base.
func ComputeTotals(lineSubtotals []decimal.Decimal, zonePercent, taxPercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, s := range lineSubtotals {
		subtotal = subtotal.Add(s)
	}
	subtotal = subtotal.Round(2)

	discount := subtotal.Mul(zonePercent).Div(hundred).Round(2)
	base := subtotal.Sub(discount)
	tax := base.Mul(taxPercent).Div(hundred).Round(2)
	total := base.Add(tax).Round(2)

	return Totals{
		Subtotal:      subtotal,
		DiscountTotal: discount,
		TaxAmount:     tax,
		Total:         total,
	}
}
