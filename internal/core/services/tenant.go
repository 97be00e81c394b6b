package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/core/ports/driven"
	"github.com/custodia-labs/stocksync/internal/core/ports/driving"
)

// Ensure TenantService implements the interface.
var _ driving.TenantService = (*TenantService)(nil)

// TenantService manages registered shops.
type TenantService struct {
	store driven.TenantStore
	now   func() time.Time
}

// NewTenantService creates a new tenant service.
func NewTenantService(store driven.TenantStore) *TenantService {
	return &TenantService{store: store, now: time.Now}
}

// Add registers a shop, or replaces the token of an existing one.
func (s *TenantService) Add(ctx context.Context, shop, accessToken string) (*domain.Tenant, error) {
	tenant := domain.Tenant{
		Shop:        NormaliseShop(shop),
		AccessToken: strings.TrimSpace(accessToken),
	}
	if err := tenant.Validate(); err != nil {
		return nil, fmt.Errorf("shop and access token are required: %w", err)
	}

	now := s.now()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now

	existing, err := s.store.Get(ctx, tenant.Shop)
	switch {
	case err == nil:
		tenant.CreatedAt = existing.CreatedAt
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("get tenant: %w", err)
	}

	if err := s.store.Save(ctx, tenant); err != nil {
		return nil, fmt.Errorf("save tenant: %w", err)
	}
	return &tenant, nil
}

// List returns all registered shops.
func (s *TenantService) List(ctx context.Context) ([]domain.Tenant, error) {
	return s.store.List(ctx)
}

// Remove unregisters a shop.
func (s *TenantService) Remove(ctx context.Context, shop string) error {
	shop = NormaliseShop(shop)
	if _, err := s.store.Get(ctx, shop); err != nil {
		return err
	}
	return s.store.Delete(ctx, shop)
}

// NormaliseShop reduces a shop URL to its bare domain:
// "https://Example.myshopify.com/" becomes "example.myshopify.com".
func NormaliseShop(shop string) string {
	shop = strings.ToLower(strings.TrimSpace(shop))
	shop = strings.TrimPrefix(shop, "https://")
	shop = strings.TrimPrefix(shop, "http://")
	return strings.TrimSuffix(shop, "/")
}
