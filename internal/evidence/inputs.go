package evidence

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/recaudo/evidence-cli/internal/schema"
	"github.com/recaudo/evidence-cli/internal/table"
)

// Required columns per input file. The first three are canonical names
// checked after normalization; the consolidated index keeps its source
// column names.
var (
	SourceColumns       = []string{schema.FieldAccountID, schema.FieldName, schema.FieldEffectiveChannels}
	NewRecordsColumns   = []string{schema.FieldAccountID, schema.FieldEffectiveChannels}
	SMSColumns          = []string{schema.FieldCreditNumber}
	ConsolidatedColumns = []string{consolidatedNationalID, consolidatedPhone, consolidatedRoute, consolidatedFilename}
)

// InputPaths names the batch input files. SMS and Consolidated are optional;
// the rest are required.
type InputPaths struct {
	Source       string
	NewRecords   string
	SMS          string
	Consolidated string
	IVRAudio     string
}

// Inputs holds the loaded, normalized and validated input tables.
type Inputs struct {
	Paths        InputPaths
	Source       *table.Table
	NewRecords   *table.Table
	SMS          *table.Table // nil when not supplied
	Consolidated *table.Table // nil when not supplied
}

// LoadInputs reads every provided workbook, normalizes headers (the
// consolidated index only gets its cell values trimmed since downstream
// lookups use its source column names) and validates required columns. Any
// failure here aborts before the batch touches the output tree.
func LoadInputs(paths InputPaths, m schema.Mapping) (*Inputs, error) {
	if paths.Source == "" {
		return nil, eris.New("evidence: source file is required")
	}
	if paths.NewRecords == "" {
		return nil, eris.New("evidence: new-records file is required")
	}
	if paths.IVRAudio == "" {
		return nil, eris.New("evidence: ivr audio file is required")
	}

	in := &Inputs{Paths: paths}

	src, err := loadNormalized(paths.Source, m, SourceColumns)
	if err != nil {
		return nil, err
	}
	in.Source = src

	newRecords, err := loadNormalized(paths.NewRecords, m, NewRecordsColumns)
	if err != nil {
		return nil, err
	}
	in.NewRecords = newRecords

	if paths.SMS != "" {
		sms, err := loadNormalized(paths.SMS, m, SMSColumns)
		if err != nil {
			return nil, err
		}
		in.SMS = sms
	}

	if paths.Consolidated != "" {
		t, err := table.ReadFile(paths.Consolidated, table.Options{})
		if err != nil {
			return nil, err
		}
		trimmed := schema.TrimOnly(t)
		if err := schema.Validate(trimmed, ConsolidatedColumns, filepath.Base(paths.Consolidated)); err != nil {
			return nil, err
		}
		in.Consolidated = trimmed
	}

	info, err := os.Stat(paths.IVRAudio)
	if err != nil {
		return nil, eris.Wrapf(err, "evidence: ivr audio %s", paths.IVRAudio)
	}
	if !info.Mode().IsRegular() {
		return nil, eris.Errorf("evidence: ivr audio %s is not a regular file", paths.IVRAudio)
	}

	return in, nil
}

func loadNormalized(path string, m schema.Mapping, required []string) (*table.Table, error) {
	t, err := table.ReadFile(path, table.Options{})
	if err != nil {
		return nil, err
	}
	normalized := schema.Normalize(t, m)
	if err := schema.Validate(normalized, required, filepath.Base(path)); err != nil {
		return nil, err
	}
	return normalized, nil
}
