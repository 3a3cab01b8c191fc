package evidence

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/recaudo/evidence-cli/internal/model"
	"github.com/recaudo/evidence-cli/internal/schema"
	"github.com/recaudo/evidence-cli/internal/table"
)

// resolveSMS writes the SMS rows whose credit number matches the customer's
// account. No rows means no deliveries to evidence: the resolver fails
// without writing anything.
func resolveSMS(cust model.Customer, sms *table.Table, dir string, log *zap.Logger) model.Result {
	res := model.Result{Channel: model.ChannelSMS}

	credit := sms.Column(schema.FieldCreditNumber)
	rows := sms.Filter(func(row []string) bool {
		return keyEqual(table.Value(row, credit), cust.AccountID)
	})
	if rows.IsEmpty() {
		res.Err = eris.Errorf("evidence: no sms rows for account %s", cust.AccountID)
		log.Warn("no sms rows for customer",
			zap.String("customer", cust.Name), zap.String("account_id", cust.AccountID))
		return res
	}

	excerptName := "SMS_" + cust.Name + ".xlsx"
	if err := rows.WriteFile(filepath.Join(dir, excerptName)); err != nil {
		res.Err = eris.Wrapf(err, "evidence: sms excerpt for %s", cust.Name)
		log.Warn("sms evidence failed", zap.String("customer", cust.Name), zap.Error(res.Err))
		return res
	}
	res.Artifacts = append(res.Artifacts, excerptName)
	res.OK = true
	return res
}
