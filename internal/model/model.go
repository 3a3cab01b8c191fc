package model

import "time"

// Channel identifies an outreach channel for which evidence can be assembled.
type Channel string

const (
	ChannelIVR  Channel = "IVR"
	ChannelSMS  Channel = "SMS"
	ChannelCall Channel = "CALL"
)

// Customer is one row of the source customer table.
type Customer struct {
	AccountID   string `json:"account_id"`
	Name        string `json:"name"`
	NationalID  string `json:"national_id,omitempty"`
	Phone       string `json:"phone,omitempty"`
	RawChannels string `json:"raw_channels,omitempty"` // effective-channels cell as loaded
}

// Result is the outcome of a single evidence resolver for one customer.
// Artifacts lists the file names created inside the customer folder; files
// written before a later step failed are still listed.
type Result struct {
	Channel   Channel
	OK        bool
	Artifacts []string
	Err       error
}

// CustomerStatus represents the terminal state of one customer within a batch.
type CustomerStatus string

const (
	CustomerStatusDone    CustomerStatus = "done"
	CustomerStatusSkipped CustomerStatus = "skipped"
	CustomerStatusFailed  CustomerStatus = "failed"
)

// CustomerOutcome aggregates per-customer processing results.
type CustomerOutcome struct {
	AccountID string         `json:"account_id"`
	Name      string         `json:"name"`
	Status    CustomerStatus `json:"status"`
	Channels  []string       `json:"channels,omitempty"`
	Artifacts []string       `json:"artifacts,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// RunStatus represents the current state of a batch run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// BatchParams records what a batch run was asked to do.
type BatchParams struct {
	SourceFile       string `json:"source_file"`
	NewRecordsFile   string `json:"new_records_file"`
	SMSFile          string `json:"sms_file,omitempty"`
	ConsolidatedFile string `json:"consolidated_file,omitempty"`
	IVRAudioFile     string `json:"ivr_audio_file"`
	OutputRoot       string `json:"output_root"`
	Folder           string `json:"folder"`
	AccountID        string `json:"account_id,omitempty"`
	Concurrency      int    `json:"concurrency,omitempty"`
}

// BatchResult holds the final tallies of a batch run. RunID is set when the
// run was recorded in the history store.
type BatchResult struct {
	RunID     string            `json:"run_id,omitempty"`
	Customers int               `json:"customers"`
	Succeeded int               `json:"succeeded"`
	Skipped   int               `json:"skipped"`
	Failed    int               `json:"failed"`
	Artifacts int               `json:"artifacts"`
	Outcomes  []CustomerOutcome `json:"outcomes,omitempty"`
}

// BatchRun is a persisted batch run record.
type BatchRun struct {
	ID        string       `json:"id"`
	Params    BatchParams  `json:"params"`
	Status    RunStatus    `json:"status"`
	Result    *BatchResult `json:"result,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
