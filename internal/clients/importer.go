package clients

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/poliutech/cotizador-backend/pkg/db/models"
	pkgerrors "github.com/poliutech/cotizador-backend/pkg/errors"
	"github.com/poliutech/cotizador-backend/pkg/logger"
)

// Column identifiers after header normalization.
const (
	colName    = "name"
	colCompany = "company"
	colOwner   = "owner"
	colEmail   = "email"
	colPhone   = "phone"
	colAddress = "address"
	colTaxID   = "tax_id"
)

// headerSynonyms maps accent-folded, lowercased header cells to their
// canonical column. Directory exports arrive with drifting column names,
// so the match is deliberately loose.
var headerSynonyms = map[string]string{
	"nombre":             colName,
	"cliente":            colName,
	"nombre cliente":     colName,
	"nombre_cliente":     colName,
	"empresa":            colCompany,
	"compania":           colCompany,
	"razon social":       colCompany,
	"responsable":        colOwner,
	"vendedor":           colOwner,
	"asesor":             colOwner,
	"correo":             colEmail,
	"correo electronico": colEmail,
	"email":              colEmail,
	"e-mail":             colEmail,
	"telefono":           colPhone,
	"tel":                colPhone,
	"celular":            colPhone,
	"direccion":          colAddress,
	"domicilio":          colAddress,
	"rfc":                colTaxID,
}

// accentFolder strips combining marks so "Teléfono" and "telefono"
// normalize to the same key.
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ImportRequest carries an uploaded client directory file.
type ImportRequest struct {
	Filename string
	Reader   io.Reader
}

// ImportReport summarizes a bulk import run.
type ImportReport struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// Importer ingests CSV and XLSX client directory files.
type Importer struct {
	repo   *Repository
	logger *logger.Logger
}

// NewImporter constructs a client importer.
func NewImporter(repo *Repository, logg *logger.Logger) (*Importer, error) {
	if repo == nil {
		return nil, fmt.Errorf("client repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Importer{repo: repo, logger: logg}, nil
}

// Run parses the upload and inserts every well formed row whose name is
// not already in the directory. Bad rows are skipped, never fatal.
func (i *Importer) Run(ctx context.Context, req ImportRequest) (*ImportReport, error) {
	rows, err := readRows(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading import file")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "import file is empty")
	}

	columns := resolveHeader(rows[0])
	if _, ok := columns[colName]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "import file has no recognizable name column")
	}

	report := &ImportReport{}
	for idx, row := range rows[1:] {
		client, ok := parseRow(columns, row)
		if !ok {
			report.Skipped++
			continue
		}

		_, err := i.repo.FindByNameInsensitive(ctx, client.Name)
		switch {
		case err == nil:
			// already on file, keep the existing contact data
			report.Skipped++
			continue
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking existing client")
		}

		if err := i.repo.Create(ctx, client); err != nil {
			i.logger.Warn(i.logger.WithField(ctx, "row", idx+2), "skipping client row that failed to insert")
			report.Skipped++
			continue
		}
		report.Inserted++
	}
	return report, nil
}

func parseRow(columns map[string]int, row []string) (*models.Client, bool) {
	name := strings.TrimSpace(cell(row, columns, colName))
	if name == "" {
		return nil, false
	}

	return &models.Client{
		ID:      uuid.New(),
		Name:    name,
		Company: optional(cell(row, columns, colCompany)),
		Owner:   strings.TrimSpace(cell(row, columns, colOwner)),
		Email:   optional(cell(row, columns, colEmail)),
		Phone:   optional(cell(row, columns, colPhone)),
		Address: optional(cell(row, columns, colAddress)),
		TaxID:   optional(cell(row, columns, colTaxID)),
	}, true
}

// resolveHeader maps canonical column names to their index in the file.
// The first synonym hit wins for each column.
func resolveHeader(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for idx, raw := range header {
		canonical, ok := headerSynonyms[normalizeHeader(raw)]
		if !ok {
			continue
		}
		if _, taken := columns[canonical]; !taken {
			columns[canonical] = idx
		}
	}
	return columns
}

func normalizeHeader(raw string) string {
	folded, _, err := transform.String(accentFolder, strings.TrimSpace(raw))
	if err != nil {
		folded = raw
	}
	return strings.ToLower(folded)
}

func cell(row []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func readRows(req ImportRequest) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(req.Filename)) {
	case ".xlsx", ".xlsm":
		return readXLSX(req.Reader)
	default:
		return readCSV(req.Reader)
	}
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// a single ragged line should not sink the whole file
			continue
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return book.GetRows(sheets[0])
}
