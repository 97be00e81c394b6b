package driven

import (
	"context"

	"github.com/custodia-labs/stocksync/internal/core/domain"
)

// TenantStore persists shop credentials.
type TenantStore interface {
	// Save stores or updates a tenant.
	Save(ctx context.Context, tenant domain.Tenant) error

	// Get retrieves a tenant by shop domain.
	// Returns domain.ErrNotFound if the tenant does not exist.
	Get(ctx context.Context, shop string) (*domain.Tenant, error)

	// List returns all tenants ordered by shop domain.
	List(ctx context.Context) ([]domain.Tenant, error)

	// Delete removes a tenant.
	Delete(ctx context.Context, shop string) error
}
