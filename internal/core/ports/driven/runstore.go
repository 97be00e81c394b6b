package driven

import (
	"context"

	"github.com/custodia-labs/stocksync/internal/core/domain"
)

// RunStore persists reconciliation run results.
type RunStore interface {
	// Save stores or updates a run.
	Save(ctx context.Context, run *domain.RunResult) error

	// Get retrieves a run by ID.
	// Returns domain.ErrNotFound if the run does not exist.
	Get(ctx context.Context, id string) (*domain.RunResult, error)

	// List returns recent runs, most recent first.
	List(ctx context.Context, limit int) ([]domain.RunResult, error)
}

// RunObserver receives run and record events, e.g. for metrics.
type RunObserver interface {
	// RecordHandled is called once per decoded record.
	RecordHandled(mode domain.RunMode, outcome domain.RecordOutcome)

	// RunFinished is called once per run with its final state.
	RunFinished(run *domain.RunResult)
}
