package table

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()

	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, row := range rows {
			r := sheet.AddRow()
			for _, val := range row {
				r.AddCell().SetString(val)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadFile(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {
			{"cuenta", "nombre", "gestion_efectiva"},
			{"1001", "ACME SA", "IVR, SMS"},
			{"1002", "BETA SA", "CALL"},
		},
	})

	tbl, err := ReadFile(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"cuenta", "nombre", "gestion_efectiva"}, tbl.Headers)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"1001", "ACME SA", "IVR, SMS"}, tbl.Rows[0])
	assert.Equal(t, []string{"1002", "BETA SA", "CALL"}, tbl.Rows[1])
}

func TestReadFileSheetByName(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"datos":   {{"cuenta"}, {"1"}},
		"ignored": {{"other"}, {"x"}},
	})

	tbl, err := ReadFile(path, Options{SheetName: "datos"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cuenta"}, tbl.Headers)
	require.Len(t, tbl.Rows, 1)
}

func TestReadFileSheetNotFound(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {{"a"}},
	})

	_, err := ReadFile(path, Options{SheetName: "missing"})
	assert.ErrorContains(t, err, `sheet "missing" not found`)
}

func TestReadFileSheetIndexOutOfRange(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {{"a"}},
	})

	_, err := ReadFile(path, Options{SheetIndex: 3})
	assert.ErrorContains(t, err, "out of range")
}

func TestReadFileEmptySheet(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {},
	})

	tbl, err := ReadFile(path, Options{})
	require.NoError(t, err)
	assert.True(t, tbl.IsEmpty())
	assert.Empty(t, tbl.Headers)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.xlsx"), Options{})
	assert.Error(t, err)
}

func TestWriteFileRoundTrip(t *testing.T) {
	tbl := &Table{
		Headers: []string{"cuenta", "nombre", "monto"},
		Rows: [][]string{
			{"0012345", "ACME SA", "150.5"},
			{"1002", "BETA SA", "75"},
		},
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, tbl.WriteFile(path))

	got, err := ReadFile(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, tbl.Headers, got.Headers)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "0012345", got.Rows[0][0], "leading zeros survive the round trip")
	assert.Equal(t, "ACME SA", got.Rows[0][1])
	assert.Equal(t, "1002", got.Rows[1][0])
}

func TestWriteFileIdentifierCellsAreText(t *testing.T) {
	tbl := &Table{
		Headers: []string{"dni", "telefono"},
		Rows: [][]string{
			{"45123987", "987654321"},
		},
	}

	path := filepath.Join(t.TempDir(), "ids.xlsx")
	require.NoError(t, tbl.WriteFile(path))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet := f.Sheets[0]
	require.Len(t, sheet.Rows, 2)
	for _, cell := range sheet.Rows[1].Cells {
		assert.Equal(t, "@", cell.NumFmt, "identifier cells carry the literal-text format")
	}
}

func TestIdentifierText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain digits pass through", "0012345", "0012345"},
		{"float artifact normalized", "12345.0", "12345"},
		{"scientific notation normalized", "1.2345e+07", "12345000"},
		{"non integral float kept", "123.45", "123.45"},
		{"empty kept", "", ""},
		{"text kept", "sin dato", "sin dato"},
		{"surrounding whitespace trimmed", " 1001 ", "1001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IdentifierText(tt.in))
		})
	}
}

func TestIsIdentifierColumn(t *testing.T) {
	assert.True(t, IsIdentifierColumn("cuenta"))
	assert.True(t, IsIdentifierColumn("CUENTA"))
	assert.True(t, IsIdentifierColumn(" numero_credito "))
	assert.True(t, IsIdentifierColumn("teléfono"))
	assert.False(t, IsIdentifierColumn("nombre"))
	assert.False(t, IsIdentifierColumn("gestion_efectiva"))
}

func TestWriteFileLongNumbersStayText(t *testing.T) {
	tbl := &Table{
		Headers: []string{"nombre", "referencia"},
		Rows: [][]string{
			{"ACME", "12345678901234"},
		},
	}

	path := filepath.Join(t.TempDir(), "long.xlsx")
	require.NoError(t, tbl.WriteFile(path))

	got, err := ReadFile(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, "12345678901234", got.Rows[0][1], "14 digit value not rewritten in scientific notation")
}
