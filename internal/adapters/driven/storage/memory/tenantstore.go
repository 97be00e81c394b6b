package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/core/ports/driven"
)

// Ensure TenantStore implements the interface.
var _ driven.TenantStore = (*TenantStore)(nil)

// TenantStore is an in-memory implementation of driven.TenantStore.
type TenantStore struct {
	mu      sync.RWMutex
	tenants map[string]domain.Tenant
}

// NewTenantStore creates a new in-memory tenant store holding tenants.
func NewTenantStore(tenants ...domain.Tenant) *TenantStore {
	s := &TenantStore{tenants: make(map[string]domain.Tenant, len(tenants))}
	for _, t := range tenants {
		s.tenants[t.Shop] = t
	}
	return s
}

// Save stores or updates a tenant.
func (s *TenantStore) Save(_ context.Context, tenant domain.Tenant) error {
	if tenant.Shop == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[tenant.Shop] = tenant
	return nil
}

// Get retrieves a tenant by shop domain.
func (s *TenantStore) Get(_ context.Context, shop string) (*domain.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenant, ok := s.tenants[shop]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &tenant, nil
}

// List returns all tenants ordered by shop domain.
func (s *TenantStore) List(_ context.Context) ([]domain.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenants := make([]domain.Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		tenants = append(tenants, t)
	}
	sort.Slice(tenants, func(i, j int) bool { return tenants[i].Shop < tenants[j].Shop })
	return tenants, nil
}

// Delete removes a tenant.
func (s *TenantStore) Delete(_ context.Context, shop string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tenants, shop)
	return nil
}
