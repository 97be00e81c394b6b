package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stocksync/internal/core/domain"
)

func TestAdjustmentApplier_NoChangesNoCall(t *testing.T) {
	catalog := newMockCatalog()
	applier := NewAdjustmentApplier(catalog)

	adjusted, err := applier.Apply(context.Background(), testTenant, []domain.QuantityChange{
		{InventoryItemID: "item", LocationID: "loc-se", Delta: 0},
	})

	require.NoError(t, err)
	assert.False(t, adjusted)
	assert.Empty(t, catalog.adjustments)
}

func TestAdjustmentApplier_BatchesAndDeduplicates(t *testing.T) {
	catalog := newMockCatalog()
	applier := NewAdjustmentApplier(catalog)

	adjusted, err := applier.Apply(context.Background(), testTenant, []domain.QuantityChange{
		{InventoryItemID: "item", LocationID: "loc-se", Delta: 3},
		{InventoryItemID: "item", LocationID: "loc-va", Delta: -1},
		{InventoryItemID: "item", LocationID: "loc-se", Delta: 9},
	})

	require.NoError(t, err)
	assert.True(t, adjusted)
	require.Len(t, catalog.adjustments, 1)
	req := catalog.adjustments[0]
	assert.Equal(t, domain.AdjustmentReason, req.Reason)
	assert.Equal(t, domain.AdjustmentQuantity, req.Name)
	require.Len(t, req.Changes, 2)
	assert.Equal(t, int64(3), req.Changes[0].Delta)
	assert.Equal(t, int64(-1), req.Changes[1].Delta)
}

func TestAdjustmentApplier_UserErrorsAreSoft(t *testing.T) {
	catalog := newMockCatalog()
	catalog.adjustUserErrors = []domain.UserError{{Field: []string{"input", "changes", "0"}, Message: "invalid location"}}
	applier := NewAdjustmentApplier(catalog)

	adjusted, err := applier.Apply(context.Background(), testTenant, []domain.QuantityChange{
		{InventoryItemID: "item", LocationID: "loc-x", Delta: 2},
	})

	assert.False(t, adjusted)
	assert.True(t, domain.IsSoftError(err))
	assert.Contains(t, err.Error(), "input.changes.0: invalid location")
}

func TestAdjustmentApplier_TransportErrorPropagates(t *testing.T) {
	catalog := newMockCatalog()
	catalog.adjustErr = errors.New("connection refused")
	applier := NewAdjustmentApplier(catalog)

	_, err := applier.Apply(context.Background(), testTenant, []domain.QuantityChange{
		{InventoryItemID: "item", LocationID: "loc-se", Delta: 2},
	})

	require.Error(t, err)
	assert.False(t, domain.IsSoftError(err))
	assert.Contains(t, err.Error(), "connection refused")
}
