// Package table provides the in-memory worksheet model shared by the
// loaders, normalizers, and evidence resolvers: an ordered header row plus
// string-cell data rows.
package table

// Table is a worksheet held in memory. Every cell is the string rendering of
// whatever the source sheet contained. Rows may be ragged; lookups beyond a
// row's length yield the empty string.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Column returns the index of the named header, or -1 if absent.
func (t *Table) Column(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at the given row and column, or "" when either
// index is out of range.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	return Value(t.Rows[row], col)
}

// Value returns row[col], or "" when col is out of range for the row.
func Value(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// IsEmpty reports whether the table has no data rows.
func (t *Table) IsEmpty() bool {
	return len(t.Rows) == 0
}

// Filter returns a new table containing the rows for which keep returns
// true. Headers are copied; the result shares no mutable state with t.
func (t *Table) Filter(keep func(row []string) bool) *Table {
	out := &Table{Headers: append([]string(nil), t.Headers...)}
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, append([]string(nil), row...))
		}
	}
	return out
}

// SetColumn returns a new table with the named column holding the same
// value in every row. An existing column is overwritten; otherwise the
// column is appended. Ragged rows are padded to the header width first.
func (t *Table) SetColumn(name, value string) *Table {
	idx := t.Column(name)
	width := len(t.Headers)
	out := &Table{Headers: append([]string(nil), t.Headers...)}
	if idx < 0 {
		out.Headers = append(out.Headers, name)
		idx = width
		width++
	}
	for _, row := range t.Rows {
		padded := make([]string, width)
		copy(padded, row)
		padded[idx] = value
		out.Rows = append(out.Rows, padded)
	}
	return out
}
