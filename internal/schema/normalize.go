package schema

import (
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/recaudo/evidence-cli/internal/table"
)

// Fold returns a case- and accent-insensitive comparison key for a header:
// combining marks stripped, lowercased, underscores unified to spaces, and
// runs of whitespace collapsed.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	folded = strings.ReplaceAll(folded, "_", " ")
	return strings.Join(strings.Fields(folded), " ")
}

// Normalize renames every column whose header is an accepted spelling to
// its canonical field name and trims whitespace from all cell values. Each
// field claims at most one column and each column at most one field, in
// fieldOrder precedence. Headers with no accepted spelling pass through
// untouched. Normalizing an already-normalized table changes nothing.
func Normalize(t *table.Table, m Mapping) *table.Table {
	claimed := make(map[int]bool)
	renames := make(map[int]string)
	for _, field := range fieldOrder {
		idx := matchColumn(t.Headers, m.spellings[field], claimed)
		if idx < 0 {
			continue
		}
		claimed[idx] = true
		renames[idx] = field
	}

	headers := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		if name, ok := renames[i]; ok {
			headers[i] = name
		} else {
			headers[i] = h
		}
	}

	return &table.Table{Headers: headers, Rows: trimCells(t.Rows)}
}

// TrimOnly trims whitespace from headers and cell values without renaming
// any column. Reserved for the consolidated recordings index, which
// downstream code addresses by its original column names.
func TrimOnly(t *table.Table) *table.Table {
	headers := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		headers[i] = strings.TrimSpace(h)
	}
	return &table.Table{Headers: headers, Rows: trimCells(t.Rows)}
}

// MissingColumns returns the required columns the table does not have, in
// the order they were required.
func MissingColumns(t *table.Table, required []string) []string {
	var missing []string
	for _, field := range required {
		if t.Column(field) < 0 {
			missing = append(missing, field)
		}
	}
	return missing
}

// Validate reports every required column missing from the table. The file
// name is included so batch operators can tell which input to fix.
func Validate(t *table.Table, required []string, fileName string) error {
	missing := MissingColumns(t, required)
	if len(missing) > 0 {
		return eris.Errorf("schema: %s missing required columns: %s", fileName, strings.Join(missing, ", "))
	}
	return nil
}

// matchColumn finds the first unclaimed column accepted for a field. Exact
// matches against the spelling list win; a folded comparison catches
// case/accent permutations the list does not enumerate.
func matchColumn(headers, spellings []string, claimed map[int]bool) int {
	for i, h := range headers {
		if claimed[i] {
			continue
		}
		trimmed := strings.TrimSpace(h)
		for _, s := range spellings {
			if trimmed == s {
				return i
			}
		}
	}

	for i, h := range headers {
		if claimed[i] {
			continue
		}
		fh := Fold(h)
		for _, s := range spellings {
			if fh == Fold(s) {
				return i
			}
		}
	}

	return -1
}

func trimCells(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		trimmed := make([]string, len(row))
		for j, cell := range row {
			trimmed[j] = strings.TrimSpace(cell)
		}
		out[i] = trimmed
	}
	return out
}
