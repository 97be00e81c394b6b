package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stocksync/internal/core/domain"
)

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("ftp.host", "ftp.example.com"))
	require.NoError(t, store.Set("ftp.port", int64(2121)))
	require.NoError(t, store.Set("catalog.requests_per_second", 1.5))
	require.NoError(t, store.Set("retry.max_attempts", 4))
	require.NoError(t, store.Set("scheduler.enabled", true))

	assert.Equal(t, "ftp.example.com", store.GetString("ftp.host"))
	assert.Equal(t, 2121, store.GetInt("ftp.port"))
	assert.Equal(t, 1.5, store.GetFloat("catalog.requests_per_second"))
	assert.Equal(t, 4.0, store.GetFloat("retry.max_attempts"))
	assert.True(t, store.GetBool("scheduler.enabled"))

	assert.Equal(t, "", store.GetString("ftp.port"))
	assert.Equal(t, 0, store.GetInt("missing"))
	assert.Equal(t, 0.0, store.GetFloat("ftp.host"))
	assert.False(t, store.GetBool("ftp.host"))
	assert.Equal(t, ":memory:", store.Path())
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("logging.sample_every", n)
			_ = store.GetInt("logging.sample_every")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("logging.sample_every")
	assert.True(t, ok)
}

func TestTenantStore_CRUD(t *testing.T) {
	ctx := context.Background()
	store := NewTenantStore(domain.Tenant{Shop: "b.myshopify.com", AccessToken: "b"})

	require.NoError(t, store.Save(ctx, domain.Tenant{Shop: "a.myshopify.com", AccessToken: "a"}))
	assert.ErrorIs(t, store.Save(ctx, domain.Tenant{}), domain.ErrInvalidInput)

	tenants, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, tenants, 2)
	assert.Equal(t, "a.myshopify.com", tenants[0].Shop)

	got, err := store.Get(ctx, "b.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, "b", got.AccessToken)

	require.NoError(t, store.Delete(ctx, "b.myshopify.com"))
	_, err = store.Get(ctx, "b.myshopify.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStore_SaveAndList(t *testing.T) {
	ctx := context.Background()
	store := NewRunStore()
	now := time.Now()

	older := &domain.RunResult{ID: "run-1", Mode: domain.RunModeSync, StartedAt: now.Add(-time.Hour)}
	newer := &domain.RunResult{ID: "run-2", Mode: domain.RunModeZeroOut, StartedAt: now}
	require.NoError(t, store.Save(ctx, older))
	require.NoError(t, store.Save(ctx, newer))

	// Later mutation of the caller's value does not leak into the store
	newer.State = domain.RunStateDone
	newer.Tenants = append(newer.Tenants, domain.TenantResult{Shop: "x"})

	runs, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Empty(t, runs[0].Tenants)

	runs, err = store.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Save(ctx, &domain.RunResult{}), domain.ErrInvalidInput)
}
