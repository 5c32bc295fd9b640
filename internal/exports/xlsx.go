package exports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Cotización"

// WriteXLSX renders the quote as a styled workbook, company title block,
// concept table and totals column.
func WriteXLSX(w io.Writer, doc *Document) error {
	book := excelize.NewFile()
	defer book.Close()

	book.SetSheetName(book.GetSheetName(0), sheetName)

	titleStyle, err := book.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("building xlsx styles: %w", err)
	}
	headerStyle, err := book.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"0D47A1"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("building xlsx styles: %w", err)
	}
	boldStyle, err := book.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("building xlsx styles: %w", err)
	}
	moneyStyle, err := book.NewStyle(&excelize.Style{
		CustomNumFmt: strPtr(`"$"#,##0.00`),
		Alignment:    &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return fmt.Errorf("building xlsx styles: %w", err)
	}

	if err := book.MergeCell(sheetName, "A1", "F1"); err != nil {
		return fmt.Errorf("laying out xlsx: %w", err)
	}
	setCell(book, "A1", fmt.Sprintf("COTIZACIÓN %s", doc.Folio))
	_ = book.SetCellStyle(sheetName, "A1", "F1", titleStyle)

	info := [][]interface{}{
		{"Folio", doc.Folio, "", "Fecha", doc.Date.Format("02/01/2006 15:04")},
		{"Cliente", doc.ClientName, "", "Empresa", doc.ClientCompany},
		{"Representante", doc.Owner, "", "Estatus", doc.Status},
	}
	row := 2
	for _, values := range info {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := book.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("laying out xlsx: %w", err)
		}
		row++
	}
	row++ // blank separator

	header := []interface{}{"Cant", "Unidad", "Concepto", "Sistema", "Precio Unit.", "Subtotal"}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := book.SetSheetRow(sheetName, cell, &header); err != nil {
		return fmt.Errorf("laying out xlsx: %w", err)
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(6, row)
	_ = book.SetCellStyle(sheetName, first, last, headerStyle)
	row++

	for _, line := range doc.Lines {
		qty, _ := line.Quantity.Float64()
		price, _ := line.UnitPrice.Float64()
		subtotal, _ := line.Subtotal.Float64()
		values := []interface{}{qty, line.Unit, line.Name, line.System, price, subtotal}
		cell, _ = excelize.CoordinatesToCellName(1, row)
		if err := book.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("laying out xlsx: %w", err)
		}
		priceCell, _ := excelize.CoordinatesToCellName(5, row)
		subCell, _ := excelize.CoordinatesToCellName(6, row)
		_ = book.SetCellStyle(sheetName, priceCell, subCell, moneyStyle)
		row++
	}
	row++ // blank separator

	setCellAt(book, 3, row, doc.AmountInWords)
	row++

	totals := [][2]interface{}{
		{"Subtotal:", toFloat(doc.Subtotal)},
	}
	if doc.HasDiscount() {
		totals = append(totals,
			[2]interface{}{"Descuento:", toFloat(doc.Discount.Neg())},
			[2]interface{}{"Subtotal c/ desc.:", toFloat(doc.NetSubtotal)},
		)
	}
	totals = append(totals,
		[2]interface{}{fmt.Sprintf("IVA (%s%%):", doc.TaxPercent.StringFixed(2)), toFloat(doc.TaxAmount)},
		[2]interface{}{"Total:", toFloat(doc.Total)},
	)
	for _, pair := range totals {
		setCellAt(book, 2, row, pair[0])
		setCellAt(book, 3, row, pair[1])
		labelCell, _ := excelize.CoordinatesToCellName(2, row)
		valueCell, _ := excelize.CoordinatesToCellName(3, row)
		_ = book.SetCellStyle(sheetName, labelCell, labelCell, boldStyle)
		_ = book.SetCellStyle(sheetName, valueCell, valueCell, moneyStyle)
		row++
	}

	widths := map[string]float64{"A": 10, "B": 12, "C": 60, "D": 25, "E": 15, "F": 15}
	for col, width := range widths {
		_ = book.SetColWidth(sheetName, col, col, width)
	}

	if err := book.Write(w); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}
	return nil
}

func setCell(book *excelize.File, cell string, value interface{}) {
	_ = book.SetCellValue(sheetName, cell, value)
}

func setCellAt(book *excelize.File, col, row int, value interface{}) {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	setCell(book, cell, value)
}

func toFloat(d interface{ Float64() (float64, bool) }) float64 {
	f, _ := d.Float64()
	return f
}

func strPtr(s string) *string {
	return &s
}
