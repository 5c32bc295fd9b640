package catalog

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/poliutech/cotizador-backend/pkg/logger"
)

func newTestImporter(t *testing.T) (*Importer, *Repository) {
	t.Helper()
	db := newTestDB(t)
	repo := NewRepository(db)
	logg := logger.New(logger.Options{ServiceName: "catalog-test", Level: logger.ParseLevel("error")})
	imp, err := NewImporter(repo, logg)
	require.NoError(t, err)
	return imp, repo
}

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"Nombre":              "nombre",
		"  PRECIO UNITARIO ":  "precio unitario",
		"Descripción":         "descripcion",
		"UNIDAD DE MEDIDA":    "unidad de medida",
		" precio_unitario\t":  "precio_unitario",
	}
	for in, want := range cases {
		require.Equal(t, want, normalizeHeader(in), "input %q", in)
	}
}

func TestResolveHeader_Synonyms(t *testing.T) {
	cases := [][]string{
		{"Nombre", "Unidad", "Precio Unitario", "Descripción"},
		{"nombre_concepto", "UM", "precio_unitario", "detalle"},
		{"CONCEPTO", "unidad de medida", "PRECIO", "Observaciones"},
	}
	for _, header := range cases {
		columns := resolveHeader(header)
		require.Equal(t, 0, columns[colName], "header %v", header)
		require.Equal(t, 1, columns[colUnit], "header %v", header)
		require.Equal(t, 2, columns[colUnitPrice], "header %v", header)
		require.Equal(t, 3, columns[colDescription], "header %v", header)
	}
}

func TestImporter_CSV(t *testing.T) {
	imp, repo := newTestImporter(t)
	ctx := context.Background()

	csvBody := strings.Join([]string{
		"Nombre,Unidad,Precio Unitario,Descripción",
		"Impermeabilizante Rojo,cubeta,$1850.50,acrílico 5 años",
		",litro,100.00,sin nombre se descarta",
		"Sellador Acrílico,cartucho,no-es-precio,precio ilegible",
		"Pintura Esmalte,litro,\"1,250.00\",alto brillo",
		"Thinner,litro,,precio vacío cuenta como cero",
	}, "\n")

	report, err := imp.Run(ctx, ImportRequest{
		Filename: "catalogo.csv",
		Reader:   strings.NewReader(csvBody),
	})
	require.NoError(t, err)
	require.Equal(t, 3, report.Inserted)
	require.Equal(t, 2, report.Skipped)

	esmalte, err := repo.FindByNameInsensitive(ctx, "pintura esmalte")
	require.NoError(t, err)
	require.Equal(t, "1250.00", esmalte.UnitPrice.StringFixed(2))

	thinner, err := repo.FindByNameInsensitive(ctx, "thinner")
	require.NoError(t, err)
	require.Equal(t, "0.00", thinner.UnitPrice.StringFixed(2))
}

func TestImporter_SkipsExistingNames(t *testing.T) {
	imp, repo := newTestImporter(t)
	ctx := context.Background()
	seedItem(t, repo.db, "Impermeabilizante Rojo", "cubeta", "1850.50")

	csvBody := strings.Join([]string{
		"nombre_concepto,unidad,precio_unitario",
		"IMPERMEABILIZANTE ROJO,cubeta,2000.00",
		"Membrana de Refuerzo,rollo,450.00",
	}, "\n")

	report, err := imp.Run(ctx, ImportRequest{
		Filename: "catalogo.csv",
		Reader:   strings.NewReader(csvBody),
	})
	require.NoError(t, err)
	require.Equal(t, 1, report.Inserted)
	require.Equal(t, 1, report.Skipped)

	// the existing row keeps its original price
	existing, err := repo.FindByNameInsensitive(ctx, "Impermeabilizante Rojo")
	require.NoError(t, err)
	require.Equal(t, "1850.50", existing.UnitPrice.StringFixed(2))
}

func TestImporter_XLSX(t *testing.T) {
	imp, repo := newTestImporter(t)
	ctx := context.Background()

	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	rows := [][]interface{}{
		{"Nombre", "Unidad", "Precio Unitario", "Sistema"},
		{"Recubrimiento Epóxico", "m2", 325.75, "epóxico"},
		{"", "m2", 10, "se descarta"},
	}
	for idx, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, idx+1)
		require.NoError(t, err)
		require.NoError(t, book.SetSheetRow(sheet, cellRef, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, book.Write(&buf))

	report, err := imp.Run(ctx, ImportRequest{
		Filename: "catalogo.xlsx",
		Reader:   &buf,
	})
	require.NoError(t, err)
	require.Equal(t, 1, report.Inserted)
	require.Equal(t, 1, report.Skipped)

	item, err := repo.FindByNameInsensitive(ctx, "recubrimiento epóxico")
	require.NoError(t, err)
	require.Equal(t, "325.75", item.UnitPrice.StringFixed(2))
	require.NotNil(t, item.System)
	require.Equal(t, "epóxico", *item.System)
}

func TestImporter_RejectsUnusableFiles(t *testing.T) {
	imp, _ := newTestImporter(t)
	ctx := context.Background()

	_, err := imp.Run(ctx, ImportRequest{Filename: "vacio.csv", Reader: strings.NewReader("")})
	require.Error(t, err)

	_, err = imp.Run(ctx, ImportRequest{
		Filename: "sin-nombre.csv",
		Reader:   strings.NewReader("Columna Rara,Otra\n1,2\n"),
	})
	require.Error(t, err)
}
