package clients

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
	repo := NewRepository(newTestDB(t))
	logg := logger.New(logger.Options{ServiceName: "clients-test", Level: logger.ParseLevel("error")})
	imp, err := NewImporter(repo, logg)
	require.NoError(t, err)
	return imp, repo
}

func TestResolveHeader_ClientSynonyms(t *testing.T) {
	cases := [][]string{
		{"Nombre", "Empresa", "Responsable", "Correo", "Teléfono", "Dirección", "RFC"},
		{"cliente", "razon social", "vendedor", "e-mail", "celular", "domicilio", "rfc"},
		{"NOMBRE_CLIENTE", "Compañía", "Asesor", "Correo Electrónico", "TEL", "DOMICILIO", "Rfc"},
	}
	for _, header := range cases {
		columns := resolveHeader(header)
		require.Equal(t, 0, columns[colName], "header %v", header)
		require.Equal(t, 1, columns[colCompany], "header %v", header)
		require.Equal(t, 2, columns[colOwner], "header %v", header)
		require.Equal(t, 3, columns[colEmail], "header %v", header)
		require.Equal(t, 4, columns[colPhone], "header %v", header)
		require.Equal(t, 5, columns[colAddress], "header %v", header)
		require.Equal(t, 6, columns[colTaxID], "header %v", header)
	}
}

func TestImporter_CSV(t *testing.T) {
	imp, repo := newTestImporter(t)
	ctx := context.Background()

	csvBody := strings.Join([]string{
		"Nombre,Empresa,Responsable,Correo,Teléfono",
		"Constructora Maya,Grupo Maya SA,Carlos,contacto@maya.mx,555-0101",
		",Sin Nombre SA,Laura,descartada@fila.mx,555-0102",
		"Industrias Pacífico,,Laura,,",
	}, "\n")

	report, err := imp.Run(ctx, ImportRequest{
		Filename: "clientes.csv",
		Reader:   strings.NewReader(csvBody),
	})
	require.NoError(t, err)
	require.Equal(t, 2, report.Inserted)
	require.Equal(t, 1, report.Skipped)

	maya, err := repo.FindByNameInsensitive(ctx, "constructora maya")
	require.NoError(t, err)
	require.Equal(t, "Carlos", maya.Owner)
	require.NotNil(t, maya.Company)
	require.Equal(t, "Grupo Maya SA", *maya.Company)
	require.NotNil(t, maya.Phone)
	require.Equal(t, "555-0101", *maya.Phone)

	pacifico, err := repo.FindByNameInsensitive(ctx, "Industrias Pacífico")
	require.NoError(t, err)
	require.Nil(t, pacifico.Company)
	require.Nil(t, pacifico.Email)
}

func TestImporter_SkipsExistingNames(t *testing.T) {
	imp, repo := newTestImporter(t)
	ctx := context.Background()
	seedClient(t, repo, "Constructora Maya", "Carlos")

	csvBody := strings.Join([]string{
		"nombre_cliente,empresa,responsable",
		"CONSTRUCTORA MAYA,Otro Grupo SA,Laura",
		"Grupo Norte,Norte SA,Laura",
	}, "\n")

	report, err := imp.Run(ctx, ImportRequest{
		Filename: "clientes.csv",
		Reader:   strings.NewReader(csvBody),
	})
	require.NoError(t, err)
	require.Equal(t, 1, report.Inserted)
	require.Equal(t, 1, report.Skipped)

	// the existing row keeps its original owner and company
	existing, err := repo.FindByNameInsensitive(ctx, "Constructora Maya")
	require.NoError(t, err)
	require.Equal(t, "Carlos", existing.Owner)
	require.Nil(t, existing.Company)
}

func TestImporter_XLSX(t *testing.T) {
	imp, repo := newTestImporter(t)
	ctx := context.Background()

	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	rows := [][]interface{}{
		{"Cliente", "Empresa", "Vendedor", "RFC"},
		{"Desarrollos del Sureste", "DSur SA de CV", "Laura", "DSU010203AB1"},
		{"", "Fila sin nombre", "Laura", ""},
	}
	for idx, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, idx+1)
		require.NoError(t, err)
		require.NoError(t, book.SetSheetRow(sheet, cellRef, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, book.Write(&buf))

	report, err := imp.Run(ctx, ImportRequest{
		Filename: "clientes.xlsx",
		Reader:   &buf,
	})
	require.NoError(t, err)
	require.Equal(t, 1, report.Inserted)
	require.Equal(t, 1, report.Skipped)

	client, err := repo.FindByNameInsensitive(ctx, "desarrollos del sureste")
	require.NoError(t, err)
	require.Equal(t, "Laura", client.Owner)
	require.NotNil(t, client.TaxID)
	require.Equal(t, "DSU010203AB1", *client.TaxID)
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
