package evidence

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/recaudo/evidence-cli/internal/model"
)

// processCustomer assembles the evidence folder for one customer. The outcome
// is skipped when the row lists no effective channels and failed when the
// folder cannot be prepared; once resolvers run, the outcome is done even if
// individual channels came up empty. Resolver problems surface through their
// own logs and the artifact list.
func (r *Runner) processCustomer(cust model.Customer, root string) model.CustomerOutcome {
	out := model.CustomerOutcome{AccountID: cust.AccountID, Name: cust.Name}

	channels := ParseChannels(cust.RawChannels)
	if len(channels) == 0 {
		r.log.Warn("no effective channels, customer skipped",
			zap.String("account_id", cust.AccountID),
			zap.String("name", cust.Name))
		out.Status = model.CustomerStatusSkipped
		return out
	}
	out.Channels = channels

	if cust.AccountID == "" || cust.Name == "" {
		r.log.Warn("customer row is missing account id or name",
			zap.String("account_id", cust.AccountID),
			zap.String("name", cust.Name))
		out.Status = model.CustomerStatusFailed
		out.Error = "customer row is missing account id or name"
		return out
	}

	dir := filepath.Join(root, cust.Name+"_"+cust.AccountID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		r.log.Error("create customer folder", zap.String("dir", dir), zap.Error(err))
		out.Status = model.CustomerStatusFailed
		out.Error = err.Error()
		return out
	}

	r.log.Info("processing customer",
		zap.String("account_id", cust.AccountID),
		zap.String("name", cust.Name),
		zap.Strings("channels", channels))

	want := make(map[string]bool, len(channels))
	for _, c := range channels {
		want[c] = true
	}

	record := func(res model.Result) {
		out.Artifacts = append(out.Artifacts, res.Artifacts...)
		if res.OK {
			r.log.Info("channel evidence created",
				zap.String("account_id", cust.AccountID),
				zap.String("channel", string(res.Channel)),
				zap.Strings("artifacts", res.Artifacts))
		}
	}

	// Channel order is fixed so artifact lists stay stable across runs.
	if want[string(model.ChannelIVR)] {
		record(resolveIVR(cust, r.inputs.NewRecords, dir, r.inputs.Paths.IVRAudio, r.log))
	}
	if want[string(model.ChannelSMS)] && r.inputs.SMS != nil {
		record(resolveSMS(cust, r.inputs.SMS, dir, r.log))
	}
	if want[string(model.ChannelCall)] {
		record(resolveCall(cust, r.inputs.NewRecords, r.inputs.Consolidated, dir, r.log))
	}

	out.Status = model.CustomerStatusDone
	r.log.Info("customer done",
		zap.String("account_id", cust.AccountID),
		zap.Int("artifacts", len(out.Artifacts)))
	return out
}
