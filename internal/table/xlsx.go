package table

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Options configures how a worksheet is read.
type Options struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// identifierColumns lists column names whose values are account numbers,
// document numbers, phone numbers, or credit numbers. These are written as
// literal text cells so a spreadsheet application cannot strip leading zeros
// or rewrite long values in scientific notation. Matching is on the
// lowercased, trimmed header.
var identifierColumns = map[string]bool{
	"account_id":        true,
	"national_id":       true,
	"phone":             true,
	"credit_number":     true,
	"cuenta":            true,
	"dni":               true,
	"documento":         true,
	"telefono":          true,
	"teléfono":          true,
	"celular":           true,
	"numero_credito":    true,
	"numero de credito": true,
}

// ReadFile reads an XLSX worksheet into a Table. The first row is the
// header; remaining rows are data. Every cell is converted to its string
// form.
func ReadFile(path string, opts Options) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open %s", path)
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	if len(sheet.Rows) == 0 {
		return &Table{}, nil
	}

	t := &Table{Headers: rowToStrings(sheet.Rows[0])}
	for _, row := range sheet.Rows[1:] {
		t.Rows = append(t.Rows, rowToStrings(row))
	}
	return t, nil
}

// WriteFile serializes the table to a single-sheet XLSX workbook. Identifier
// columns are written as text cells with the literal-text number format;
// other columns are written as numbers when the value is cleanly numeric and
// as text otherwise. Missing values become empty cells.
func (t *Table) WriteFile(path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	hdr := sheet.AddRow()
	for _, h := range t.Headers {
		hdr.AddCell().SetString(h)
	}

	for _, row := range t.Rows {
		r := sheet.AddRow()
		for j := range t.Headers {
			cell := r.AddCell()
			v := Value(row, j)
			if IsIdentifierColumn(t.Headers[j]) {
				cell.SetString(IdentifierText(v))
				cell.NumFmt = "@"
				continue
			}
			writeCell(cell, v)
		}
	}

	return eris.Wrapf(f.Save(path), "xlsx: save %s", path)
}

// IsIdentifierColumn reports whether the header names a known identifier
// column.
func IsIdentifierColumn(header string) bool {
	return identifierColumns[strings.ToLower(strings.TrimSpace(header))]
}

// IdentifierText normalizes an identifier value for text output. Plain digit
// strings pass through untouched, preserving leading zeros. Values carrying
// float artifacts from an earlier numeric conversion ("12345.0",
// "1.2345e+07") are rewritten as plain integer text. Anything else is kept
// as-is.
func IdentifierText(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || isPlainDigits(v) {
		return v
	}
	if !strings.ContainsAny(v, ".eE") {
		return v
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != float64(int64(f)) {
		return v
	}
	return strconv.FormatInt(int64(f), 10)
}

func isPlainDigits(v string) bool {
	if v == "" {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// writeCell writes a non-identifier value, keeping short clean numbers
// numeric. Long integers (over 10 digits) and digit strings with leading
// zeros stay text so their exact form survives.
func writeCell(cell *xlsx.Cell, v string) {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		cell.SetString(v)
		return
	}
	if isPlainDigits(trimmed) {
		if len(trimmed) > 10 || (len(trimmed) > 1 && trimmed[0] == '0') {
			cell.SetString(v)
			return
		}
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			cell.SetString(v)
			return
		}
		cell.SetInt64(n)
		return
	}
	if strings.Contains(trimmed, ".") {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			cell.SetFloat(f)
			return
		}
	}
	cell.SetString(v)
}

func getSheet(f *xlsx.File, opts Options) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
