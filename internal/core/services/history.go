package services

import (
	"context"

	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/core/ports/driven"
	"github.com/custodia-labs/stocksync/internal/core/ports/driving"
)

// Ensure RunHistoryService implements the interface.
var _ driving.RunHistory = (*RunHistoryService)(nil)

// defaultHistoryLimit is used when no positive limit is given.
const defaultHistoryLimit = 20

// RunHistoryService reads past runs from the run store.
type RunHistoryService struct {
	store driven.RunStore
}

// NewRunHistoryService creates a new run history service.
func NewRunHistoryService(store driven.RunStore) *RunHistoryService {
	return &RunHistoryService{store: store}
}

// Recent returns up to limit runs, most recent first.
func (s *RunHistoryService) Recent(ctx context.Context, limit int) ([]domain.RunResult, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.store.List(ctx, limit)
}

// Get returns a single run.
func (s *RunHistoryService) Get(ctx context.Context, id string) (*domain.RunResult, error) {
	return s.store.Get(ctx, id)
}
