package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/recaudo/evidence-cli/internal/model"
)

// ErrRunNotFound is returned by GetRun when no run has the given id.
var ErrRunNotFound = eris.New("run not found")

// RunFilter specifies criteria for listing batch runs.
type RunFilter struct {
	Status       model.RunStatus `json:"status,omitempty"`
	CreatedAfter time.Time       `json:"created_after,omitempty"`
	Limit        int             `json:"limit,omitempty"`
	Offset       int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the batch-run history ledger.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, params model.BatchParams) (*model.BatchRun, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, result *model.BatchResult) error
	GetRun(ctx context.Context, runID string) (*model.BatchRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.BatchRun, error)

	// Per-customer outcomes
	ListRunCustomers(ctx context.Context, runID string) ([]model.CustomerOutcome, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
