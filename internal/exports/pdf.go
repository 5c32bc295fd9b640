package exports

import (
	"fmt"
	"io"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	marotocfg "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/poliutech/cotizador-backend/pkg/config"
)

var (
	brandColor = &props.Color{Red: 13, Green: 71, Blue: 161}
	whiteColor = &props.Color{Red: 255, Green: 255, Blue: 255}
	grayColor  = &props.Color{Red: 51, Green: 51, Blue: 51}
)

// WritePDF renders the quote as a paginated PDF with the corporate
// letterhead, concept table, totals block and signature footer.
func WritePDF(w io.Writer, doc *Document) error {
	cfg := marotocfg.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(10).
		Build()

	m := maroto.New(cfg)

	if err := m.RegisterHeader(headerRows(doc)...); err != nil {
		return fmt.Errorf("building pdf header: %w", err)
	}
	if err := m.RegisterFooter(footerRows(doc)...); err != nil {
		return fmt.Errorf("building pdf footer: %w", err)
	}

	m.AddRows(infoRows(doc)...)
	m.AddRows(lineTable(doc)...)
	m.AddRows(totalsRows(doc)...)
	m.AddRows(notesRows(doc)...)

	rendered, err := m.Generate()
	if err != nil {
		return fmt.Errorf("generating pdf: %w", err)
	}
	if _, err := w.Write(rendered.GetBytes()); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

func headerRows(doc *Document) []core.Row {
	title := fmt.Sprintf("COTIZACIÓN %s", doc.Company.Name)
	return []core.Row{
		row.New(14).Add(
			col.New(12).Add(
				text.New(title, props.Text{
					Size:  14,
					Style: fontstyle.Bold,
					Align: align.Right,
					Color: whiteColor,
					Top:   2,
				}),
				text.New(doc.Company.Slogan, props.Text{
					Size:  9,
					Align: align.Right,
					Color: whiteColor,
					Top:   9,
				}),
			).WithStyle(&props.Cell{BackgroundColor: brandColor}),
		),
		row.New(4),
	}
}

func infoRows(doc *Document) []core.Row {
	rows := []core.Row{
		text.NewRow(5, fmt.Sprintf("Folio: %s", doc.Folio), props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewRow(5, fmt.Sprintf("Fecha: %s", doc.Date.Format("02/01/2006 15:04")), props.Text{Size: 9}),
		text.NewRow(5, fmt.Sprintf("Responsable: %s", doc.Owner), props.Text{Size: 9}),
		row.New(3),
	}

	client := [][2]string{
		{"Cliente", doc.ClientName},
		{"Empresa", doc.ClientCompany},
		{"Correo", doc.ClientEmail},
		{"Teléfono", doc.ClientPhone},
	}
	for _, pair := range client {
		if pair[1] == "" {
			continue
		}
		rows = append(rows, text.NewRow(5, fmt.Sprintf("%s: %s", pair[0], pair[1]), props.Text{Size: 9}))
	}
	rows = append(rows, row.New(4))
	return rows
}

func lineTable(doc *Document) []core.Row {
	rows := []core.Row{
		row.New(7).Add(
			headerCell(4, "Concepto"),
			headerCell(1, "Uni."),
			headerCell(1, "Cant."),
			headerCell(2, "Sistema"),
			headerCell(2, "Precio Unitario"),
			headerCell(2, "Subtotal"),
		),
	}

	for _, l := range doc.Lines {
		rows = append(rows, row.New(6).Add(
			text.NewCol(4, orDash(l.Name), props.Text{Size: 9}),
			text.NewCol(1, orDash(l.Unit), props.Text{Size: 9, Align: align.Center}),
			text.NewCol(1, l.Quantity.StringFixed(2), props.Text{Size: 9, Align: align.Center}),
			text.NewCol(2, orDash(l.System), props.Text{Size: 9, Align: align.Center}),
			text.NewCol(2, "$"+l.UnitPrice.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, "$"+l.Subtotal.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
		))
	}

	rows = append(rows,
		line.NewRow(2, props.Line{Color: grayColor}),
		text.NewRow(6, fmt.Sprintf("Cantidad en letra: %s", doc.AmountInWords), props.Text{Size: 9, Style: fontstyle.Bold}),
	)
	return rows
}

func headerCell(size int, label string) core.Col {
	return col.New(size).Add(
		text.New(label, props.Text{
			Size:  9,
			Style: fontstyle.Bold,
			Align: align.Center,
			Color: whiteColor,
			Top:   1,
		}),
	).WithStyle(&props.Cell{BackgroundColor: brandColor})
}

func totalsRows(doc *Document) []core.Row {
	pairs := [][2]string{
		{"Subtotal:", "$" + doc.Subtotal.StringFixed(2)},
	}
	if doc.HasDiscount() {
		pairs = append(pairs,
			[2]string{"Descuento:", "-$" + doc.Discount.StringFixed(2)},
			[2]string{"Subtotal c/ desc.:", "$" + doc.NetSubtotal.StringFixed(2)},
		)
	}
	pairs = append(pairs,
		[2]string{fmt.Sprintf("IVA (%s%%):", doc.TaxPercent.StringFixed(2)), "$" + doc.TaxAmount.StringFixed(2)},
		[2]string{"Total:", "$" + doc.Total.StringFixed(2)},
	)

	rows := make([]core.Row, 0, len(pairs)+1)
	for _, pair := range pairs {
		rows = append(rows, row.New(5).Add(
			col.New(7),
			text.NewCol(3, pair[0], props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
			text.NewCol(2, pair[1], props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		))
	}
	rows = append(rows, row.New(4))
	return rows
}

func notesRows(doc *Document) []core.Row {
	if doc.Notes == "" {
		return nil
	}
	return []core.Row{
		text.NewRow(5, "Condiciones Comerciales:", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewRow(12, doc.Notes, props.Text{Size: 9}),
	}
}

func footerRows(doc *Document) []core.Row {
	rows := []core.Row{}
	if doc.Company.Signatory != "" {
		rows = append(rows,
			text.NewRow(4, "Atte.", props.Text{Size: 9, Align: align.Center}),
			text.NewRow(4, doc.Company.Signatory, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Center}),
			text.NewRow(4, doc.Company.SignatoryTitle, props.Text{Size: 9, Align: align.Center}),
		)
	}
	rows = append(rows,
		line.NewRow(2, props.Line{Color: brandColor}),
		text.NewRow(4, fmt.Sprintf("%s – %s", doc.Company.Name, doc.Company.Slogan), props.Text{
			Size:  9,
			Style: fontstyle.Bold,
			Align: align.Center,
			Color: brandColor,
		}),
	)
	if doc.Company.Address != "" {
		rows = append(rows, text.NewRow(4, doc.Company.Address, props.Text{Size: 8, Align: align.Center, Color: grayColor}))
	}
	if contact := contactLine(doc.Company); contact != "" {
		rows = append(rows, text.NewRow(4, contact, props.Text{Size: 8, Align: align.Center, Color: grayColor}))
	}
	return rows
}

func contactLine(company config.CompanyConfig) string {
	parts := make([]string, 0, 3)
	if company.Phone != "" {
		parts = append(parts, "Tel: "+company.Phone)
	}
	if company.Email != "" {
		parts = append(parts, company.Email)
	}
	if company.Website != "" {
		parts = append(parts, company.Website)
	}
	return strings.Join(parts, " · ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
