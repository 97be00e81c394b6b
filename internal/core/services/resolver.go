package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/core/ports/driven"
	"github.com/custodia-labs/stocksync/internal/logger"
)

// LocationResolver maps a SKU to its catalog inventory state and makes
// sure the item is tracked at every target location.
type LocationResolver struct {
	catalog driven.Catalog
}

// NewLocationResolver creates a resolver backed by the catalog.
func NewLocationResolver(catalog driven.Catalog) *LocationResolver {
	return &LocationResolver{catalog: catalog}
}

// Lookup returns the single variant matching sku exactly.
// Zero or several matches are returned as *domain.RecordSkipped.
func (r *LocationResolver) Lookup(ctx context.Context, tenant domain.Tenant, sku string) (*domain.InventorySnapshot, error) {
	variants, err := r.catalog.LookupVariants(ctx, tenant, sku)
	if err != nil {
		return nil, fmt.Errorf("lookup variants: %w", err)
	}

	switch len(variants) {
	case 0:
		return nil, &domain.RecordSkipped{SKU: sku, Reason: domain.SkipNotFound}
	case 1:
		snapshot := variants[0]
		if snapshot.InventoryItemID == "" {
			return nil, &domain.RecordSkipped{
				SKU:    sku,
				Reason: domain.SkipNoInventoryLevels,
				Detail: "variant has no inventory item",
			}
		}
		return &snapshot, nil
	default:
		return nil, &domain.RecordSkipped{
			SKU:    sku,
			Reason: domain.SkipAmbiguous,
			Detail: fmt.Sprintf("%d variants", len(variants)),
		}
	}
}

// EnsureTargets returns the tracked level for each target, in target order.
//
// Targets the snapshot does not track are resolved by exact name against
// the location directory, which is fetched at most once, and activated.
// Activated locations are added to the snapshot at quantity 0. Any target
// that cannot be resolved or activated abandons the record.
func (r *LocationResolver) EnsureTargets(
	ctx context.Context,
	tenant domain.Tenant,
	snapshot *domain.InventorySnapshot,
	targets []domain.LocationTarget,
) ([]domain.InventoryLevel, error) {
	levels := make([]domain.InventoryLevel, len(targets))

	var directory []domain.Location
	var fetched bool

	for i, target := range targets {
		if level, ok := snapshot.Level(target.Name); ok {
			levels[i] = level
			continue
		}

		if !fetched {
			locations, err := r.catalog.ListLocations(ctx, tenant)
			if err != nil {
				return nil, fmt.Errorf("list locations: %w", err)
			}
			directory = locations
			fetched = true
		}

		loc, ok := domain.FindLocation(directory, target.Name)
		if !ok {
			return nil, &domain.RecordSkipped{
				SKU:    snapshot.SKU,
				Reason: domain.SkipLocationNotInDirectory,
				Detail: target.Name,
			}
		}

		activatedID, userErrors, err := r.catalog.ActivateInventory(ctx, tenant, snapshot.InventoryItemID, loc.ID)
		if err != nil {
			return nil, fmt.Errorf("activate %s: %w", target.Name, err)
		}
		if len(userErrors) > 0 || activatedID == "" {
			detail := target.Name
			if len(userErrors) > 0 {
				detail += ": " + (&domain.MutationSoftError{Mutation: "inventoryActivate", UserErrors: userErrors}).Error()
			}
			return nil, &domain.RecordSkipped{
				SKU:    snapshot.SKU,
				Reason: domain.SkipActivationFailed,
				Detail: detail,
			}
		}

		logger.Debug("Activated %s at %s", snapshot.SKU, target.Name)
		levels[i] = snapshot.Track(domain.Location{ID: activatedID, Name: loc.Name})
	}

	return levels, nil
}
