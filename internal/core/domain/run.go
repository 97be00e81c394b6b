package domain

import "time"

// RunMode selects which pipeline variant a run executes.
type RunMode string

// Available run modes.
const (
	// RunModeSync sets the named target locations to the feed quantities.
	RunModeSync RunMode = "sync"

	// RunModeZeroOut zeroes every tracked location except the named targets.
	RunModeZeroOut RunMode = "zero-out"
)

// IsValid returns true if the run mode is recognised.
func (m RunMode) IsValid() bool {
	return m == RunModeSync || m == RunModeZeroOut
}

// String returns the string representation.
func (m RunMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m RunMode) Description() string {
	switch m {
	case RunModeSync:
		return "Sync target locations to feed quantities"
	case RunModeZeroOut:
		return "Zero out quantities at all other locations"
	default:
		return "Unknown"
	}
}

// AllRunModes returns every supported run mode.
func AllRunModes() []RunMode {
	return []RunMode{RunModeSync, RunModeZeroOut}
}

// FeedSource selects where a run fetches its feed from.
type FeedSource string

// Available feed sources.
const (
	FeedSourceFTP   FeedSource = "ftp"
	FeedSourceLocal FeedSource = "local"
)

// RunRequest describes one reconciliation run.
type RunRequest struct {
	Mode RunMode

	// Source defaults to FeedSourceFTP.
	Source FeedSource

	// SourcePath overrides the remote path (FTP) or names the drop
	// file (local).
	SourcePath string
}

// RunState is a state of the run state machine.
type RunState string

// Run states. Failed is reachable from Fetching and, for decode errors,
// from Streaming.
const (
	RunStateIdle      RunState = "idle"
	RunStateFetching  RunState = "fetching"
	RunStateStreaming RunState = "streaming"
	RunStateDraining  RunState = "draining"
	RunStateDone      RunState = "done"
	RunStateFailed    RunState = "failed"
)

// IsTerminal returns true for Done and Failed.
func (s RunState) IsTerminal() bool {
	return s == RunStateDone || s == RunStateFailed
}

// RecordOutcome is the result of handling one feed record.
type RecordOutcome string

// Record outcomes.
const (
	OutcomeUnchanged  RecordOutcome = "unchanged"
	OutcomeAdjusted   RecordOutcome = "adjusted"
	OutcomeSkipped    RecordOutcome = "skipped"
	OutcomeSoftFailed RecordOutcome = "soft_failed"
	OutcomeFailed     RecordOutcome = "failed"
)

// TenantResult counts what happened to the records of one tenant stream.
// Rows is incremented once per decoded record, skipped rows included.
type TenantResult struct {
	Shop       string `json:"shop"`
	Rows       int    `json:"rows"`
	Adjusted   int    `json:"adjusted"`
	Unchanged  int    `json:"unchanged"`
	Skipped    int    `json:"skipped"`
	SoftFailed int    `json:"soft_failed"`
	Failed     int    `json:"failed"`
}

// Record counts one decoded record with its outcome.
func (r *TenantResult) Record(outcome RecordOutcome) {
	r.Rows++
	switch outcome {
	case OutcomeAdjusted:
		r.Adjusted++
	case OutcomeUnchanged:
		r.Unchanged++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeSoftFailed:
		r.SoftFailed++
	case OutcomeFailed:
		r.Failed++
	}
}

// RunResult is the outcome of one run across all tenants.
type RunResult struct {
	ID        string         `json:"id"`
	Mode      RunMode        `json:"mode"`
	State     RunState       `json:"state"`
	StartedAt time.Time      `json:"started_at"`
	EndedAt   time.Time      `json:"ended_at,omitempty"`
	Tenants   []TenantResult `json:"tenants"`
	Error     string         `json:"error,omitempty"`
}

// Totals sums the per-tenant counters.
func (r *RunResult) Totals() TenantResult {
	var t TenantResult
	for _, tr := range r.Tenants {
		t.Rows += tr.Rows
		t.Adjusted += tr.Adjusted
		t.Unchanged += tr.Unchanged
		t.Skipped += tr.Skipped
		t.SoftFailed += tr.SoftFailed
		t.Failed += tr.Failed
	}
	return t
}

// TotalRows returns the number of records processed across tenants.
func (r *RunResult) TotalRows() int {
	return r.Totals().Rows
}

// Duration returns how long the run took, or 0 while it is running.
func (r *RunResult) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}
