package services

import (
	"context"

	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/quantity"
)

// recordHandler reconciles one feed record against one tenant's catalog.
// It returns whether an adjustment was applied.
type recordHandler interface {
	Handle(ctx context.Context, tenant domain.Tenant, record domain.FeedRecord) (bool, error)
}

// syncHandler sets every target location to its feed quantity.
type syncHandler struct {
	skuColumn string
	targets   []domain.LocationTarget
	resolver  *LocationResolver
	applier   *AdjustmentApplier
}

func (h *syncHandler) Handle(ctx context.Context, tenant domain.Tenant, record domain.FeedRecord) (bool, error) {
	sku := record.SKU(h.skuColumn)
	if sku == "" {
		return false, &domain.RecordSkipped{Reason: domain.SkipMissingSKU}
	}

	reported := make([]domain.ReportedQuantity, len(h.targets))
	anyValid := false
	for i, t := range h.targets {
		reported[i] = quantity.Parse(record[t.Column], t.Format)
		anyValid = anyValid || reported[i].Valid
	}
	if !anyValid {
		return false, &domain.RecordSkipped{SKU: sku, Reason: domain.SkipNoQuantity}
	}

	snapshot, err := h.resolver.Lookup(ctx, tenant, sku)
	if err != nil {
		return false, err
	}

	levels, err := h.resolver.EnsureTargets(ctx, tenant, snapshot, h.targets)
	if err != nil {
		return false, err
	}

	resolved := make([]domain.ResolvedTarget, len(h.targets))
	for i, t := range h.targets {
		resolved[i] = domain.ResolvedTarget{Target: t, Level: levels[i], Reported: reported[i]}
	}

	return h.applier.Apply(ctx, tenant, domain.SyncChanges(snapshot.InventoryItemID, resolved))
}

// zeroOutHandler zeroes every tracked location outside the targets.
type zeroOutHandler struct {
	skuColumn string
	protected []string
	resolver  *LocationResolver
	applier   *AdjustmentApplier
}

func (h *zeroOutHandler) Handle(ctx context.Context, tenant domain.Tenant, record domain.FeedRecord) (bool, error) {
	sku := record.SKU(h.skuColumn)
	if sku == "" {
		return false, &domain.RecordSkipped{Reason: domain.SkipMissingSKU}
	}

	snapshot, err := h.resolver.Lookup(ctx, tenant, sku)
	if err != nil {
		return false, err
	}
	if len(snapshot.Levels) == 0 {
		return false, &domain.RecordSkipped{SKU: sku, Reason: domain.SkipNoInventoryLevels}
	}

	return h.applier.Apply(ctx, tenant, domain.ZeroOutChanges(snapshot, h.protected))
}
