package evidence

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/recaudo/evidence-cli/internal/model"
	"github.com/recaudo/evidence-cli/internal/schema"
	"github.com/recaudo/evidence-cli/internal/table"
)

// resolveIVR copies the IVR audio into the customer folder and, when the
// new-records table has IVR rows for the account, writes the matching
// excerpt. The audio is copied unconditionally: the IVR channel on the
// customer row already attests the call happened, so a missing excerpt is a
// warning, not a failure.
func resolveIVR(cust model.Customer, newRecords *table.Table, dir, audioSrc string, log *zap.Logger) model.Result {
	res := model.Result{Channel: model.ChannelIVR}

	audioName := "ivr_" + cust.Name + ".mp3"
	if err := copyFile(audioSrc, filepath.Join(dir, audioName)); err != nil {
		res.Err = eris.Wrapf(err, "evidence: ivr audio for %s", cust.Name)
		log.Warn("ivr evidence failed", zap.String("customer", cust.Name), zap.Error(res.Err))
		return res
	}
	res.Artifacts = append(res.Artifacts, audioName)

	rows := filterChannelRows(newRecords, cust.AccountID, string(model.ChannelIVR))
	if rows.IsEmpty() {
		log.Warn("no ivr rows in new records, audio copied alone",
			zap.String("customer", cust.Name), zap.String("account_id", cust.AccountID))
		res.OK = true
		return res
	}

	excerpt := rows.SetColumn(schema.FieldManagementType, string(model.ChannelIVR))
	excerptName := cust.Name + "_ivr.xlsx"
	if err := excerpt.WriteFile(filepath.Join(dir, excerptName)); err != nil {
		res.Err = eris.Wrapf(err, "evidence: ivr excerpt for %s", cust.Name)
		log.Warn("ivr evidence failed", zap.String("customer", cust.Name), zap.Error(res.Err))
		return res
	}
	res.Artifacts = append(res.Artifacts, excerptName)
	res.OK = true
	return res
}
