package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMappingFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mappings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultMappingAcceptsCanonicalNames(t *testing.T) {
	m := DefaultMapping()
	for _, field := range fieldOrder {
		assert.Contains(t, m.Spellings(field), field, "field %s must accept its own name", field)
	}
}

func TestLoadMapping(t *testing.T) {
	path := writeMappingFile(t, `
fields:
  account_id: ["CTA", "nro cuenta"]
  phone: ["movil"]
`)

	m, err := LoadMapping(path)
	require.NoError(t, err)

	got := m.Spellings(FieldAccountID)
	assert.Contains(t, got, "CTA")
	assert.Contains(t, got, "nro cuenta")
	assert.Contains(t, got, "cuenta", "defaults stay accepted")
	assert.Contains(t, m.Spellings(FieldPhone), "movil")
	assert.Equal(t, DefaultMapping().Spellings(FieldName), m.Spellings(FieldName), "untouched fields keep defaults")
}

func TestLoadMappingDeduplicates(t *testing.T) {
	path := writeMappingFile(t, `
fields:
  account_id: ["cuenta", "CTA", "CTA"]
`)

	m, err := LoadMapping(path)
	require.NoError(t, err)

	got := m.Spellings(FieldAccountID)
	assert.Equal(t, len(DefaultMapping().Spellings(FieldAccountID))+1, len(got))
}

func TestLoadMappingUnknownField(t *testing.T) {
	path := writeMappingFile(t, `
fields:
  acount_id: ["CTA"]
`)

	_, err := LoadMapping(path)
	assert.ErrorContains(t, err, `unknown canonical field "acount_id"`)
}

func TestLoadMappingMissingFile(t *testing.T) {
	_, err := LoadMapping(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMappingInvalidYAML(t *testing.T) {
	path := writeMappingFile(t, "fields: [not a map")

	_, err := LoadMapping(path)
	assert.ErrorContains(t, err, "parse mapping file")
}

func TestSpellingsReturnsCopy(t *testing.T) {
	m := DefaultMapping()
	got := m.Spellings(FieldAccountID)
	got[0] = "tampered"
	assert.Equal(t, FieldAccountID, m.Spellings(FieldAccountID)[0])
}
