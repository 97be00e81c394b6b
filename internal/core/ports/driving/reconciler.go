package driving

import (
	"context"

	"github.com/custodia-labs/stocksync/internal/core/domain"
)

// Reconciler runs the feed reconciliation pipeline.
type Reconciler interface {
	// Run fetches the feed once and reconciles it against every tenant.
	// Returns domain.ErrRunInProgress if another run is active.
	Run(ctx context.Context, req domain.RunRequest) (*domain.RunResult, error)

	// Status returns the state of the active run, or of the last run
	// when none is active.
	Status(ctx context.Context) (*RunStatus, error)
}

// RunStatus represents the current state of the reconciler.
type RunStatus struct {
	// Running indicates if a run is currently in progress.
	Running bool `json:"running"`

	// RunID identifies the active or last run.
	RunID string `json:"run_id,omitempty"`

	// Mode is the mode of the active or last run.
	Mode domain.RunMode `json:"mode,omitempty"`

	// State is the run state machine state.
	State domain.RunState `json:"state"`

	// Shop is the tenant currently being streamed.
	Shop string `json:"shop,omitempty"`

	// RecordsProcessed is the count of records processed so far.
	RecordsProcessed int `json:"records_processed"`
}
