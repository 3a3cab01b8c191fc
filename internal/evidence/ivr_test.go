package evidence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/recaudo/evidence-cli/internal/model"
	"github.com/recaudo/evidence-cli/internal/schema"
	"github.com/recaudo/evidence-cli/internal/table"
)

// audioFixture writes a small stand-in audio file and returns its path.
func audioFixture(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("ID3 fake audio"), 0o644))
	return path
}

// newRecordsFixture builds a normalized new-records table.
func newRecordsFixture(rows ...[]string) *table.Table {
	return &table.Table{
		Headers: []string{schema.FieldAccountID, schema.FieldEffectiveChannels, "detalle"},
		Rows:    rows,
	}
}

func TestResolveIVR_AudioAndExcerpt(t *testing.T) {
	dir := t.TempDir()
	audio := audioFixture(t, t.TempDir(), "audio.mp3")
	records := newRecordsFixture(
		[]string{"100", "IVR, SMS", "primer intento"},
		[]string{"100", "SMS", "sin ivr"},
		[]string{"200", "IVR", "otro cliente"},
	)
	cust := model.Customer{AccountID: "100", Name: "ACME"}

	res := resolveIVR(cust, records, dir, audio, zap.NewNop())

	require.NoError(t, res.Err)
	assert.True(t, res.OK)
	assert.Equal(t, []string{"ivr_ACME.mp3", "ACME_ivr.xlsx"}, res.Artifacts)
	assert.FileExists(t, filepath.Join(dir, "ivr_ACME.mp3"))

	excerpt, err := table.ReadFile(filepath.Join(dir, "ACME_ivr.xlsx"), table.Options{})
	require.NoError(t, err)
	require.Equal(t, 1, excerpt.Len())
	assert.Equal(t, "IVR", excerpt.Cell(0, excerpt.Column(schema.FieldManagementType)))
	assert.Equal(t, "primer intento", excerpt.Cell(0, excerpt.Column("detalle")))
}

func TestResolveIVR_NoRowsCopiesAudioAlone(t *testing.T) {
	dir := t.TempDir()
	audio := audioFixture(t, t.TempDir(), "audio.mp3")
	records := newRecordsFixture([]string{"200", "IVR", "otro cliente"})
	cust := model.Customer{AccountID: "100", Name: "ACME"}

	res := resolveIVR(cust, records, dir, audio, zap.NewNop())

	require.NoError(t, res.Err)
	assert.True(t, res.OK)
	assert.Equal(t, []string{"ivr_ACME.mp3"}, res.Artifacts)
	assert.NoFileExists(t, filepath.Join(dir, "ACME_ivr.xlsx"))
}

func TestResolveIVR_MissingAudio(t *testing.T) {
	dir := t.TempDir()
	records := newRecordsFixture([]string{"100", "IVR", ""})
	cust := model.Customer{AccountID: "100", Name: "ACME"}

	res := resolveIVR(cust, records, dir, filepath.Join(dir, "missing.mp3"), zap.NewNop())

	require.Error(t, res.Err)
	assert.False(t, res.OK)
	assert.Empty(t, res.Artifacts)
	assert.Contains(t, res.Err.Error(), "ivr audio for ACME")
}

func TestResolveIVR_FloatArtifactAccountMatches(t *testing.T) {
	dir := t.TempDir()
	audio := audioFixture(t, t.TempDir(), "audio.mp3")
	records := newRecordsFixture([]string{"100.0", "IVR", "importado de excel"})
	cust := model.Customer{AccountID: "100", Name: "ACME"}

	res := resolveIVR(cust, records, dir, audio, zap.NewNop())

	require.NoError(t, res.Err)
	assert.Equal(t, []string{"ivr_ACME.mp3", "ACME_ivr.xlsx"}, res.Artifacts)
}
