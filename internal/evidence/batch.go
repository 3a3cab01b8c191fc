// Package evidence assembles per-customer outreach evidence folders from
// reconciled collection tables: the IVR audio copy, per-channel workbook
// excerpts, and the call recording when the consolidated index locates one.
package evidence

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/recaudo/evidence-cli/internal/model"
	"github.com/recaudo/evidence-cli/internal/schema"
	"github.com/recaudo/evidence-cli/internal/store"
	"github.com/recaudo/evidence-cli/internal/table"
)

// Options configures a batch run.
type Options struct {
	OutputRoot  string
	Folder      string
	AccountID   string // when set, only the matching customer row is processed
	Concurrency int
	RunID       string      // adopt an existing run record instead of creating one
	Store       store.Store // optional run history store
	Logger      *zap.Logger
}

// Runner executes one evidence batch over loaded inputs.
type Runner struct {
	inputs *Inputs
	opts   Options
	log    *zap.Logger
}

// NewRunner builds a runner. A nil logger falls back to the global logger and
// concurrency is clamped to at least one worker.
func NewRunner(inputs *Inputs, opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = zap.L()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Runner{inputs: inputs, opts: opts, log: opts.Logger}
}

// Run processes every customer row (or the one selected by AccountID) and
// returns the batch tallies. Run history bookkeeping is best effort: store
// failures are logged and never abort the batch.
func (r *Runner) Run(ctx context.Context) (*model.BatchResult, error) {
	runID := r.ensureRun(ctx)

	root := filepath.Join(r.opts.OutputRoot, r.opts.Folder)
	if err := os.MkdirAll(root, 0o755); err != nil {
		r.setRunStatus(ctx, runID, model.RunStatusFailed)
		return nil, eris.Wrapf(err, "evidence: create output folder %s", root)
	}

	customers := customersFrom(r.inputs.Source)
	if r.opts.AccountID != "" {
		customers = filterAccount(customers, r.opts.AccountID)
		if len(customers) == 0 {
			r.setRunStatus(ctx, runID, model.RunStatusFailed)
			return nil, eris.Errorf("evidence: no customer row with account_id %s", r.opts.AccountID)
		}
	}

	r.setRunStatus(ctx, runID, model.RunStatusRunning)

	total := len(customers)
	r.log.Info("batch started",
		zap.Int("customers", total),
		zap.Int("concurrency", r.opts.Concurrency),
		zap.String("output", root))

	outcomes := make([]model.CustomerOutcome, total)
	var processed, succeeded, skipped, failed, artifacts atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, cust := range customers {
		i, cust := i, cust // per-iteration copies: required semantics under pre-1.22 loop scoping
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			outcome := r.processCustomer(cust, root)
			outcomes[i] = outcome

			switch outcome.Status {
			case model.CustomerStatusDone:
				succeeded.Add(1)
			case model.CustomerStatusSkipped:
				skipped.Add(1)
			case model.CustomerStatusFailed:
				failed.Add(1)
			}
			artifacts.Add(int64(len(outcome.Artifacts)))

			r.log.Info("customer processed",
				zap.Int64("processed", processed.Add(1)),
				zap.Int("total", total),
				zap.String("account_id", cust.AccountID),
				zap.String("status", string(outcome.Status)))
			return nil // individual outcomes never abort the batch
		})
	}
	if err := g.Wait(); err != nil {
		r.setRunStatus(ctx, runID, model.RunStatusFailed)
		return nil, eris.Wrap(err, "evidence: batch processing")
	}

	result := &model.BatchResult{
		RunID:     runID,
		Customers: total,
		Succeeded: int(succeeded.Load()),
		Skipped:   int(skipped.Load()),
		Failed:    int(failed.Load()),
		Artifacts: int(artifacts.Load()),
		Outcomes:  outcomes,
	}

	r.log.Info("batch complete",
		zap.Int("customers", total),
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("skipped", skipped.Load()),
		zap.Int64("failed", failed.Load()),
		zap.Int64("artifacts", artifacts.Load()))

	r.completeRun(ctx, runID, result)
	return result, nil
}

// ensureRun returns the run id to record against, creating a run record when
// a store is configured and no id was supplied. An empty id disables
// bookkeeping for the rest of the run.
func (r *Runner) ensureRun(ctx context.Context) string {
	if r.opts.Store == nil {
		return ""
	}
	if r.opts.RunID != "" {
		return r.opts.RunID
	}
	run, err := r.opts.Store.CreateRun(ctx, r.params())
	if err != nil {
		r.log.Warn("create run record", zap.Error(err))
		return ""
	}
	return run.ID
}

func (r *Runner) setRunStatus(ctx context.Context, runID string, status model.RunStatus) {
	if r.opts.Store == nil || runID == "" {
		return
	}
	if err := r.opts.Store.UpdateRunStatus(ctx, runID, status); err != nil {
		r.log.Warn("update run status",
			zap.String("run_id", runID),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}

func (r *Runner) completeRun(ctx context.Context, runID string, result *model.BatchResult) {
	if r.opts.Store == nil || runID == "" {
		return
	}
	if err := r.opts.Store.CompleteRun(ctx, runID, result); err != nil {
		r.log.Warn("complete run record", zap.String("run_id", runID), zap.Error(err))
	}
}

func (r *Runner) params() model.BatchParams {
	return model.BatchParams{
		SourceFile:       r.inputs.Paths.Source,
		NewRecordsFile:   r.inputs.Paths.NewRecords,
		SMSFile:          r.inputs.Paths.SMS,
		ConsolidatedFile: r.inputs.Paths.Consolidated,
		IVRAudioFile:     r.inputs.Paths.IVRAudio,
		OutputRoot:       r.opts.OutputRoot,
		Folder:           r.opts.Folder,
		AccountID:        r.opts.AccountID,
		Concurrency:      r.opts.Concurrency,
	}
}

// customersFrom converts source rows into customers. Cells keep their loaded
// text; identifier normalization happens at comparison time via keyEqual.
func customersFrom(t *table.Table) []model.Customer {
	accountCol := t.Column(schema.FieldAccountID)
	nameCol := t.Column(schema.FieldName)
	nationalCol := t.Column(schema.FieldNationalID)
	phoneCol := t.Column(schema.FieldPhone)
	channelsCol := t.Column(schema.FieldEffectiveChannels)

	customers := make([]model.Customer, 0, t.Len())
	for i := range t.Rows {
		customers = append(customers, model.Customer{
			AccountID:   t.Cell(i, accountCol),
			Name:        t.Cell(i, nameCol),
			NationalID:  t.Cell(i, nationalCol),
			Phone:       t.Cell(i, phoneCol),
			RawChannels: t.Cell(i, channelsCol),
		})
	}
	return customers
}

func filterAccount(customers []model.Customer, accountID string) []model.Customer {
	var matched []model.Customer
	for _, c := range customers {
		if keyEqual(c.AccountID, accountID) {
			matched = append(matched, c)
		}
	}
	return matched
}
