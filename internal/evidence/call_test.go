package evidence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/recaudo/evidence-cli/internal/model"
	"github.com/recaudo/evidence-cli/internal/schema"
	"github.com/recaudo/evidence-cli/internal/table"
)

func consolidatedFixture(rows ...[]string) *table.Table {
	return &table.Table{
		Headers: []string{consolidatedNationalID, consolidatedPhone, consolidatedRoute, consolidatedFilename},
		Rows:    rows,
	}
}

func TestResolveCall_ExcerptAndRecording(t *testing.T) {
	dir := t.TempDir()
	recordings := t.TempDir()
	audioFixture(t, recordings, "JUAN PEREZ.mp3")

	records := newRecordsFixture(
		[]string{"100", "GRABACION CALL", "llamada efectiva"},
		[]string{"200", "CALL", "otro cliente"},
	)
	consolidated := consolidatedFixture(
		[]string{"999", "555123", recordings, "JUAN PEREZ"},
	)
	cust := model.Customer{AccountID: "100", Name: "ACME", NationalID: "999", Phone: "555123"}

	res := resolveCall(cust, records, consolidated, dir, zap.NewNop())

	require.NoError(t, res.Err)
	assert.True(t, res.OK)
	assert.Equal(t, []string{"ACME_gestiones.xlsx", "ACME_100.mp3"}, res.Artifacts)
	assert.FileExists(t, filepath.Join(dir, "ACME_100.mp3"))

	excerpt, err := table.ReadFile(filepath.Join(dir, "ACME_gestiones.xlsx"), table.Options{})
	require.NoError(t, err)
	require.Equal(t, 1, excerpt.Len())
	assert.Equal(t, "CALL", excerpt.Cell(0, excerpt.Column(schema.FieldManagementType)))
}

func TestResolveCall_NoCallRows(t *testing.T) {
	dir := t.TempDir()
	records := newRecordsFixture([]string{"100", "SMS", "sin llamadas"})
	cust := model.Customer{AccountID: "100", Name: "ACME"}

	res := resolveCall(cust, records, nil, dir, zap.NewNop())

	require.Error(t, res.Err)
	assert.False(t, res.OK)
	assert.Empty(t, res.Artifacts)
	assert.Contains(t, res.Err.Error(), "no call rows for account 100")
}

func TestResolveCall_NilConsolidated(t *testing.T) {
	dir := t.TempDir()
	records := newRecordsFixture([]string{"100", "CALL", ""})
	cust := model.Customer{AccountID: "100", Name: "ACME"}

	res := resolveCall(cust, records, nil, dir, zap.NewNop())

	require.NoError(t, res.Err)
	assert.True(t, res.OK)
	assert.Equal(t, []string{"ACME_gestiones.xlsx"}, res.Artifacts)
}

func TestResolveCall_PhoneFallback(t *testing.T) {
	dir := t.TempDir()
	recordings := t.TempDir()
	audioFixture(t, recordings, "MARIA LOPEZ.mp3")

	records := newRecordsFixture([]string{"100", "CALL", ""})
	consolidated := consolidatedFixture(
		[]string{"111", "555000", recordings, "OTRO CLIENTE"},
		[]string{"222", "555123", recordings, "MARIA LOPEZ"},
	)
	cust := model.Customer{AccountID: "100", Name: "ACME", NationalID: "999", Phone: "555123"}

	res := resolveCall(cust, records, consolidated, dir, zap.NewNop())

	require.NoError(t, res.Err)
	assert.Equal(t, []string{"ACME_gestiones.xlsx", "ACME_100.mp3"}, res.Artifacts)
}

func TestResolveCall_EmptyKeysNeverMatch(t *testing.T) {
	dir := t.TempDir()
	recordings := t.TempDir()
	audioFixture(t, recordings, "SIN DUENO.mp3")

	records := newRecordsFixture([]string{"100", "CALL", ""})
	// The index row has empty dni and telefono cells; a customer with empty
	// keys must not pair with it.
	consolidated := consolidatedFixture(
		[]string{"", "", recordings, "SIN DUENO"},
	)
	cust := model.Customer{AccountID: "100", Name: "ACME"}

	res := resolveCall(cust, records, consolidated, dir, zap.NewNop())

	require.NoError(t, res.Err)
	assert.True(t, res.OK)
	assert.Equal(t, []string{"ACME_gestiones.xlsx"}, res.Artifacts)
}

func TestResolveCall_RecordingMissingOnDisk(t *testing.T) {
	dir := t.TempDir()
	records := newRecordsFixture([]string{"100", "CALL", ""})
	consolidated := consolidatedFixture(
		[]string{"999", "", filepath.Join(dir, "no-such-dir"), "JUAN PEREZ"},
	)
	cust := model.Customer{AccountID: "100", Name: "ACME", NationalID: "999"}

	res := resolveCall(cust, records, consolidated, dir, zap.NewNop())

	require.NoError(t, res.Err)
	assert.True(t, res.OK)
	assert.Equal(t, []string{"ACME_gestiones.xlsx"}, res.Artifacts)
}

func TestResolveCall_FloatArtifactNationalIDMatches(t *testing.T) {
	dir := t.TempDir()
	recordings := t.TempDir()
	audioFixture(t, recordings, "JUAN PEREZ.mp3")

	records := newRecordsFixture([]string{"100", "CALL", ""})
	consolidated := consolidatedFixture(
		[]string{"999.0", "", recordings, "JUAN PEREZ"},
	)
	cust := model.Customer{AccountID: "100", Name: "ACME", NationalID: "999"}

	res := resolveCall(cust, records, consolidated, dir, zap.NewNop())

	require.NoError(t, res.Err)
	assert.Equal(t, []string{"ACME_gestiones.xlsx", "ACME_100.mp3"}, res.Artifacts)
}
