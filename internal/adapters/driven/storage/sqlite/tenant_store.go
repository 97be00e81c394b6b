package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/core/ports/driven"
)

// tenantStore implements driven.TenantStore over the sessions table.
type tenantStore struct {
	store *Store
}

var _ driven.TenantStore = (*tenantStore)(nil)

// Save stores or updates a tenant.
func (s *tenantStore) Save(ctx context.Context, tenant domain.Tenant) error {
	if err := tenant.Validate(); err != nil {
		return err
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sessions (shop, access_token, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(shop) DO UPDATE SET
			access_token = excluded.access_token,
			updated_at = excluded.updated_at
	`, tenant.Shop, tenant.AccessToken, formatTime(tenant.CreatedAt), formatTime(tenant.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving tenant: %w", err)
	}
	return nil
}

// Get retrieves a tenant by shop domain.
func (s *tenantStore) Get(ctx context.Context, shop string) (*domain.Tenant, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT shop, access_token, created_at, updated_at
		FROM sessions WHERE shop = ?
	`, shop)

	tenant, err := scanTenant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

// List returns all tenants ordered by shop domain.
func (s *tenantStore) List(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT shop, access_token, created_at, updated_at
		FROM sessions ORDER BY shop
	`)
	if err != nil {
		return nil, fmt.Errorf("querying tenants: %w", err)
	}
	defer rows.Close()

	var tenants []domain.Tenant //nolint:prealloc // size unknown from query
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, *tenant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tenants: %w", err)
	}
	return tenants, nil
}

// Delete removes a tenant. Deleting an absent tenant is not an error.
func (s *tenantStore) Delete(ctx context.Context, shop string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM sessions WHERE shop = ?", shop)
	if err != nil {
		return fmt.Errorf("deleting tenant: %w", err)
	}
	return nil
}

func scanTenant(row rowScanner) (*domain.Tenant, error) {
	var tenant domain.Tenant
	var createdAt, updatedAt string

	if err := row.Scan(&tenant.Shop, &tenant.AccessToken, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning tenant: %w", err)
	}
	tenant.CreatedAt = parseTime(createdAt)
	tenant.UpdatedAt = parseTime(updatedAt)
	return &tenant, nil
}
