package driving

import (
	"context"

	"github.com/custodia-labs/stocksync/internal/core/domain"
)

// RunHistory exposes past run results.
type RunHistory interface {
	// Recent returns up to limit runs, most recent first.
	Recent(ctx context.Context, limit int) ([]domain.RunResult, error)

	// Get returns a single run.
	Get(ctx context.Context, id string) (*domain.RunResult, error)
}
