package evidence

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/recaudo/evidence-cli/internal/model"
	"github.com/recaudo/evidence-cli/internal/schema"
	"github.com/recaudo/evidence-cli/internal/table"
)

// Consolidated recordings index columns, addressed by their source names
// because that table is never header-normalized.
const (
	consolidatedNationalID = "dni"
	consolidatedPhone      = "telefono"
	consolidatedRoute      = "ruta"
	consolidatedFilename   = "nombre_completo"
)

// resolveCall writes the CALL excerpt from the new-records table and then
// tries to attach the phone-call recording located through the consolidated
// index (matched by national id first, phone second). A missing recording
// degrades to excerpt-only output; a missing excerpt is a failure.
func resolveCall(cust model.Customer, newRecords, consolidated *table.Table, dir string, log *zap.Logger) model.Result {
	res := model.Result{Channel: model.ChannelCall}

	rows := filterChannelRows(newRecords, cust.AccountID, string(model.ChannelCall))
	if rows.IsEmpty() {
		res.Err = eris.Errorf("evidence: no call rows for account %s", cust.AccountID)
		log.Warn("no call rows in new records",
			zap.String("customer", cust.Name), zap.String("account_id", cust.AccountID))
		return res
	}

	excerpt := rows.SetColumn(schema.FieldManagementType, string(model.ChannelCall))
	excerptName := cust.Name + "_gestiones.xlsx"
	if err := excerpt.WriteFile(filepath.Join(dir, excerptName)); err != nil {
		res.Err = eris.Wrapf(err, "evidence: call excerpt for %s", cust.Name)
		log.Warn("call evidence failed", zap.String("customer", cust.Name), zap.Error(res.Err))
		return res
	}
	res.Artifacts = append(res.Artifacts, excerptName)

	if consolidated == nil {
		log.Info("consolidated index not provided, call excerpt only", zap.String("customer", cust.Name))
		res.OK = true
		return res
	}

	row := findRecordingRow(consolidated, cust)
	if row == nil {
		log.Warn("no call recording row found",
			zap.String("customer", cust.Name),
			zap.String("national_id", cust.NationalID),
			zap.String("phone", cust.Phone))
		res.OK = true
		return res
	}

	route := table.Value(row, consolidated.Column(consolidatedRoute))
	filename := table.Value(row, consolidated.Column(consolidatedFilename))
	audioSrc := filepath.Join(route, filename+".mp3")
	if !fileExists(audioSrc) {
		log.Warn("call recording missing on disk",
			zap.String("customer", cust.Name), zap.String("path", audioSrc))
		res.OK = true
		return res
	}

	audioName := cust.Name + "_" + cust.AccountID + ".mp3"
	if err := copyFile(audioSrc, filepath.Join(dir, audioName)); err != nil {
		res.Err = eris.Wrapf(err, "evidence: call recording for %s", cust.Name)
		log.Warn("call evidence failed", zap.String("customer", cust.Name), zap.Error(res.Err))
		return res
	}
	res.Artifacts = append(res.Artifacts, audioName)
	res.OK = true
	return res
}

// findRecordingRow returns the first consolidated row matching the
// customer's national id, falling back to the phone number. Empty customer
// keys never match: an empty dni cell in the index must not pair every
// undocumented customer with the same recording.
func findRecordingRow(consolidated *table.Table, cust model.Customer) []string {
	if cust.NationalID != "" {
		if row := findByColumn(consolidated, consolidatedNationalID, cust.NationalID); row != nil {
			return row
		}
	}
	if cust.Phone != "" {
		if row := findByColumn(consolidated, consolidatedPhone, cust.Phone); row != nil {
			return row
		}
	}
	return nil
}

func findByColumn(t *table.Table, column, key string) []string {
	col := t.Column(column)
	if col < 0 {
		return nil
	}
	for _, row := range t.Rows {
		if keyEqual(table.Value(row, col), key) {
			return row
		}
	}
	return nil
}
