package driven

import (
	"context"

	"github.com/custodia-labs/stocksync/internal/core/domain"
)

// Catalog is the remote product catalog of a tenant.
// Every call is scoped to the tenant's shop and credentials.
type Catalog interface {
	// LookupVariants returns the variants whose SKU equals sku exactly,
	// each with its tracked inventory levels.
	LookupVariants(ctx context.Context, tenant domain.Tenant, sku string) ([]domain.InventorySnapshot, error)

	// ListLocations returns the shop's location directory.
	ListLocations(ctx context.Context, tenant domain.Tenant) ([]domain.Location, error)

	// ActivateInventory starts tracking an inventory item at a location.
	// It returns the activated location ID and any user errors reported
	// by the catalog.
	ActivateInventory(ctx context.Context, tenant domain.Tenant, inventoryItemID, locationID string) (string, []domain.UserError, error)

	// AdjustQuantities applies a batch of quantity changes.
	// User errors reported by the catalog are returned without an error.
	AdjustQuantities(ctx context.Context, tenant domain.Tenant, req domain.AdjustmentRequest) ([]domain.UserError, error)
}
