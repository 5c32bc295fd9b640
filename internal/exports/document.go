// Package exports renders quotes as CSV, XLSX and PDF documents. All three
// formats are built from the same Document snapshot so the figures printed
// on each one always agree.
package exports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/poliutech/cotizador-backend/pkg/config"
	"github.com/poliutech/cotizador-backend/pkg/db/models"
	"github.com/poliutech/cotizador-backend/pkg/moneywords"
)

// Line is one concept row of the rendered document.
type Line struct {
	Name        string
	Unit        string
	System      string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// Document is the render-ready snapshot of a quote.
type Document struct {
	Folio         string
	Date          time.Time
	Status        string
	Owner         string
	ClientName    string
	ClientCompany string
	ClientEmail   string
	ClientPhone   string
	Notes         string
	Lines         []Line
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	NetSubtotal   decimal.Decimal
	TaxPercent    decimal.Decimal
	TaxAmount     decimal.Decimal
	Total         decimal.Decimal
	AmountInWords string
	Company       config.CompanyConfig
}

// NewDocument flattens the quote into a Document. The amount in words is
// cosmetic and always resolves, numerically if need be.
func NewDocument(quote *models.Quote, company config.CompanyConfig) *Document {
	doc := &Document{
		Folio:       quote.Folio,
		Date:        quote.CreatedAt,
		Status:      string(quote.Status),
		Owner:       quote.Owner,
		ClientName:  quote.ClientName,
		Subtotal:    quote.Subtotal,
		Discount:    quote.DiscountTotal,
		NetSubtotal: quote.Subtotal.Sub(quote.DiscountTotal),
		TaxPercent:  quote.TaxPercent,
		TaxAmount:   quote.TaxAmount,
		Total:       quote.Total,
		Company:     company,
	}
	if quote.Notes != nil {
		doc.Notes = *quote.Notes
	}
	if quote.Client != nil {
		doc.ClientName = quote.Client.Name
		doc.ClientCompany = strDeref(quote.Client.Company)
		doc.ClientEmail = strDeref(quote.Client.Email)
		doc.ClientPhone = strDeref(quote.Client.Phone)
	}

	doc.Lines = make([]Line, 0, len(quote.Lines))
	for _, l := range quote.Lines {
		doc.Lines = append(doc.Lines, Line{
			Name:        l.Name,
			Unit:        l.Unit,
			System:      strDeref(l.System),
			Description: strDeref(l.Description),
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal,
		})
	}

	doc.AmountInWords = moneywords.PesosMN(quote.Total)
	return doc
}

// HasDiscount reports whether the discount rows should be printed.
func (d *Document) HasDiscount() bool {
	return d.Discount.IsPositive()
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
