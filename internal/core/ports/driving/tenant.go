package driving

import (
	"context"

	"github.com/custodia-labs/stocksync/internal/core/domain"
)

// TenantService manages the shops reconciled by each run.
type TenantService interface {
	// Add registers or updates a shop and its access token.
	Add(ctx context.Context, shop, accessToken string) (*domain.Tenant, error)

	// List returns all registered shops.
	List(ctx context.Context) ([]domain.Tenant, error)

	// Remove unregisters a shop.
	Remove(ctx context.Context, shop string) error
}
