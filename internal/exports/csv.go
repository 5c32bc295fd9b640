package exports

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/poliutech/cotizador-backend/pkg/db/models"
)

// WriteCSV renders the quote as a two-block CSV, a summary row followed by
// the concept rows.
func WriteCSV(w io.Writer, doc *Document) error {
	out := csv.NewWriter(w)

	records := [][]string{
		{"Folio", "Fecha", "Estatus", "Representante", "Cliente", "Empresa", "Subtotal", "Descuento", "IVA %", "IVA $", "Total", "Notas"},
		{
			doc.Folio,
			doc.Date.Format("2006-01-02 15:04"),
			doc.Status,
			doc.Owner,
			doc.ClientName,
			doc.ClientCompany,
			doc.Subtotal.StringFixed(2),
			doc.Discount.StringFixed(2),
			doc.TaxPercent.StringFixed(2),
			doc.TaxAmount.StringFixed(2),
			doc.Total.StringFixed(2),
			doc.Notes,
		},
		{},
		{"Cant", "Unidad", "Concepto", "Sistema", "PU", "Subtotal", "Descripción"},
	}
	for _, line := range doc.Lines {
		records = append(records, []string{
			line.Quantity.StringFixed(2),
			line.Unit,
			line.Name,
			line.System,
			line.UnitPrice.StringFixed(2),
			line.Subtotal.StringFixed(2),
			line.Description,
		})
	}

	for _, record := range records {
		if err := out.Write(record); err != nil {
			return fmt.Errorf("writing quote csv: %w", err)
		}
	}
	out.Flush()
	return out.Error()
}

// WriteClientsCSV renders the client directory export.
func WriteClientsCSV(w io.Writer, rows []models.Client) error {
	out := csv.NewWriter(w)

	if err := out.Write([]string{"ID", "Nombre", "Empresa", "Responsable", "Correo", "Teléfono", "Dirección", "RFC"}); err != nil {
		return fmt.Errorf("writing clients csv: %w", err)
	}
	for _, c := range rows {
		record := []string{
			c.ID.String(),
			c.Name,
			strDeref(c.Company),
			c.Owner,
			strDeref(c.Email),
			strDeref(c.Phone),
			strDeref(c.Address),
			strDeref(c.TaxID),
		}
		if err := out.Write(record); err != nil {
			return fmt.Errorf("writing clients csv: %w", err)
		}
	}
	out.Flush()
	return out.Error()
}

// WriteCatalogCSV renders the catalog export.
func WriteCatalogCSV(w io.Writer, rows []models.CatalogItem) error {
	out := csv.NewWriter(w)

	if err := out.Write([]string{"ID", "Nombre", "Unidad", "Precio Unitario", "Sistema", "Descripción"}); err != nil {
		return fmt.Errorf("writing catalog csv: %w", err)
	}
	for _, item := range rows {
		record := []string{
			item.ID.String(),
			item.Name,
			item.Unit,
			item.UnitPrice.StringFixed(2),
			strDeref(item.System),
			strDeref(item.Description),
		}
		if err := out.Write(record); err != nil {
			return fmt.Errorf("writing catalog csv: %w", err)
		}
	}
	out.Flush()
	return out.Error()
}
