package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/core/ports/driven"
)

// AdjustmentApplier issues quantity corrections to the catalog.
type AdjustmentApplier struct {
	catalog driven.Catalog
}

// NewAdjustmentApplier creates an applier backed by the catalog.
func NewAdjustmentApplier(catalog driven.Catalog) *AdjustmentApplier {
	return &AdjustmentApplier{catalog: catalog}
}

// Apply sends all non-zero changes in a single batched adjustment.
// It returns false without calling the catalog when nothing changes.
// User errors are returned as *domain.MutationSoftError.
func (a *AdjustmentApplier) Apply(ctx context.Context, tenant domain.Tenant, changes []domain.QuantityChange) (bool, error) {
	batch := make([]domain.QuantityChange, 0, len(changes))
	seen := make(map[string]bool, len(changes))
	for _, c := range changes {
		key := c.InventoryItemID + "|" + c.LocationID
		if c.Delta == 0 || seen[key] {
			continue
		}
		seen[key] = true
		batch = append(batch, c)
	}

	if len(batch) == 0 {
		return false, nil
	}

	userErrors, err := a.catalog.AdjustQuantities(ctx, tenant, domain.NewAdjustmentRequest(batch))
	if err != nil {
		return false, fmt.Errorf("adjust quantities: %w", err)
	}
	if len(userErrors) > 0 {
		return false, &domain.MutationSoftError{
			Mutation:   "inventoryAdjustQuantities",
			UserErrors: userErrors,
		}
	}
	return true, nil
}
