package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/core/ports/driven"
	"github.com/custodia-labs/stocksync/internal/core/ports/driving"
	"github.com/custodia-labs/stocksync/internal/logger"
)

// Ensure RunOrchestrator implements the interface.
var _ driving.Reconciler = (*RunOrchestrator)(nil)

// RunConfig holds the feed layout and targets a run works with.
type RunConfig struct {
	// RemotePath is the default feed path on the FTP server.
	RemotePath string

	// LocalPath is where the fetched feed is written before decoding.
	LocalPath string

	// SKUColumn is the feed column holding the product code.
	SKUColumn string

	// Targets are the named locations the feed reports quantities for.
	Targets []domain.LocationTarget

	// SampleEvery emits a progress log line every N records. 0 disables.
	SampleEvery int
}

// RunConfigFromSettings derives a run configuration from app settings.
func RunConfigFromSettings(s *domain.AppSettings) RunConfig {
	return RunConfig{
		RemotePath:  s.FTP.RemotePath,
		LocalPath:   s.Feed.LocalPath,
		SKUColumn:   s.Feed.SKUColumn,
		Targets:     s.Locations,
		SampleEvery: s.Logging.SampleEvery,
	}
}

// RunOrchestrator fetches the feed once and streams it through the
// record handler of the requested mode, one tenant after another.
type RunOrchestrator struct {
	tenants  driven.TenantStore
	fetchers map[domain.FeedSource]driven.FeedFetcher
	decoder  driven.FeedDecoder
	runs     driven.RunStore
	observer driven.RunObserver
	handlers map[domain.RunMode]recordHandler
	cfg      RunConfig

	// Overlapping runs are rejected
	runMu   sync.Mutex
	running bool

	// Status tracking
	mu     sync.RWMutex
	status driving.RunStatus

	now func() time.Time
}

// NewRunOrchestrator creates a new run orchestrator.
// The runs store and observer are optional and may be nil.
func NewRunOrchestrator(
	tenants driven.TenantStore,
	fetchers map[domain.FeedSource]driven.FeedFetcher,
	decoder driven.FeedDecoder,
	catalog driven.Catalog,
	runs driven.RunStore,
	observer driven.RunObserver,
	cfg RunConfig,
) *RunOrchestrator {
	resolver := NewLocationResolver(catalog)
	applier := NewAdjustmentApplier(catalog)

	return &RunOrchestrator{
		tenants:  tenants,
		fetchers: fetchers,
		decoder:  decoder,
		runs:     runs,
		observer: observer,
		handlers: map[domain.RunMode]recordHandler{
			domain.RunModeSync: &syncHandler{
				skuColumn: cfg.SKUColumn,
				targets:   cfg.Targets,
				resolver:  resolver,
				applier:   applier,
			},
			domain.RunModeZeroOut: &zeroOutHandler{
				skuColumn: cfg.SKUColumn,
				protected: domain.TargetNames(cfg.Targets),
				resolver:  resolver,
				applier:   applier,
			},
		},
		cfg:    cfg,
		status: driving.RunStatus{State: domain.RunStateIdle},
		now:    time.Now,
	}
}

// Run fetches the feed and reconciles it against every tenant.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *RunOrchestrator) Run(ctx context.Context, req domain.RunRequest) (*domain.RunResult, error) {
	if !req.Mode.IsValid() {
		return nil, fmt.Errorf("%w: run mode %q", domain.ErrUnsupportedType, req.Mode)
	}
	source := req.Source
	if source == "" {
		source = domain.FeedSourceFTP
	}
	fetcher, ok := o.fetchers[source]
	if !ok {
		return nil, fmt.Errorf("%w: feed source %q", domain.ErrUnsupportedType, source)
	}
	handler := o.handlers[req.Mode]

	if !o.begin() {
		return nil, domain.ErrRunInProgress
	}
	defer o.end()

	run := &domain.RunResult{
		ID:        uuid.NewString(),
		Mode:      req.Mode,
		State:     domain.RunStateIdle,
		StartedAt: o.now(),
	}
	o.resetStatus(run)

	logger.Section(fmt.Sprintf("Run %s (%s)", run.ID, run.Mode))
	logger.Info("Starting %s run %s", run.Mode, run.ID)

	// 1. Fetch the feed once for all tenants
	o.setState(run, domain.RunStateFetching)
	o.saveRun(ctx, run)

	tenants, err := o.tenants.List(ctx)
	if err != nil {
		return o.fail(ctx, run, fmt.Errorf("list tenants: %w", err))
	}
	if len(tenants) == 0 {
		logger.Warn("%v: nothing to reconcile", domain.ErrNoTenants)
	}

	fetchReq := driven.FetchRequest{RemotePath: o.cfg.RemotePath, LocalPath: o.cfg.LocalPath}
	if req.SourcePath != "" {
		fetchReq.RemotePath = req.SourcePath
	}
	if err := fetcher.Fetch(ctx, fetchReq); err != nil {
		return o.fail(ctx, run, err)
	}
	logger.Info("Feed downloaded to %s", fetchReq.LocalPath)

	// 2. Stream the feed once per tenant, strictly in order
	o.setState(run, domain.RunStateStreaming)
	for _, tenant := range tenants {
		result, err := o.streamTenant(ctx, handler, run, tenant, fetchReq.LocalPath)
		run.Tenants = append(run.Tenants, result)
		if err != nil {
			return o.fail(ctx, run, fmt.Errorf("stream %s: %w", tenant.Shop, err))
		}
	}

	// 3. Drain and resolve with the processed count
	o.setState(run, domain.RunStateDraining)
	run.EndedAt = o.now()
	o.setState(run, domain.RunStateDone)
	o.saveRun(ctx, run)
	o.notifyFinished(run)

	totals := run.Totals()
	logger.Info("Run %s complete: %d rows, %d adjusted, %d unchanged, %d skipped, %d soft failures, %d failures",
		run.ID, totals.Rows, totals.Adjusted, totals.Unchanged, totals.Skipped, totals.SoftFailed, totals.Failed)

	return run, nil
}

// Status returns the active run status, or that of the last run.
func (o *RunOrchestrator) Status(_ context.Context) (*driving.RunStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	// Return a copy to avoid race conditions
	status := o.status
	return &status, nil
}

// streamTenant pulls records one at a time and handles each to
// completion before pulling the next.
func (o *RunOrchestrator) streamTenant(
	ctx context.Context,
	handler recordHandler,
	run *domain.RunResult,
	tenant domain.Tenant,
	path string,
) (domain.TenantResult, error) {
	result := domain.TenantResult{Shop: tenant.Shop}
	log := logger.WithFields(logger.Fields{"shop": tenant.Shop, "mode": run.Mode})

	stream, err := o.decoder.Open(ctx, path)
	if err != nil {
		return result, err
	}
	defer stream.Close()

	log.Info("Streaming feed")
	o.setShop(tenant.Shop)

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		record, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, err
		}

		outcome := o.handleRecord(ctx, handler, tenant, record, log)
		result.Record(outcome)
		o.recordProgress(run.Mode, outcome)

		if o.cfg.SampleEvery > 0 && result.Rows%o.cfg.SampleEvery == 0 {
			log.Info("Processed %d records", result.Rows)
		}
	}

	log.Info("Stream complete: %d records", result.Rows)
	return result, nil
}

// handleRecord runs the handler and classifies the outcome. Errors and
// panics stop at this boundary.
func (o *RunOrchestrator) handleRecord(
	ctx context.Context,
	handler recordHandler,
	tenant domain.Tenant,
	record domain.FeedRecord,
	log *logger.Entry,
) (outcome domain.RecordOutcome) {
	sku := record.SKU(o.cfg.SKUColumn)
	log = log.WithFields(logger.Fields{"sku": sku})

	defer func() {
		if r := recover(); r != nil {
			log.Error("Record processing panicked: %v", r)
			outcome = domain.OutcomeFailed
		}
	}()

	adjusted, err := handler.Handle(ctx, tenant, record)
	if err == nil {
		if adjusted {
			log.Debug("Adjusted")
			return domain.OutcomeAdjusted
		}
		return domain.OutcomeUnchanged
	}

	if skipped, ok := domain.IsSkipped(err); ok {
		if skipped.Reason != domain.SkipMissingSKU {
			log.Debug("Skipped: %s", skipped.Reason)
		}
		return domain.OutcomeSkipped
	}
	if domain.IsSoftError(err) {
		log.Warn("Adjustment rejected: %v", err)
		return domain.OutcomeSoftFailed
	}

	log.Error("Record processing failed: %v", err)
	return domain.OutcomeFailed
}

func (o *RunOrchestrator) fail(ctx context.Context, run *domain.RunResult, err error) (*domain.RunResult, error) {
	run.EndedAt = o.now()
	run.Error = err.Error()
	o.setState(run, domain.RunStateFailed)
	o.saveRun(ctx, run)
	o.notifyFinished(run)

	logger.Error("Run %s failed: %v", run.ID, err)
	return run, err
}

func (o *RunOrchestrator) begin() bool {
	o.runMu.Lock()
	defer o.runMu.Unlock()
	if o.running {
		return false
	}
	o.running = true
	return true
}

func (o *RunOrchestrator) end() {
	o.runMu.Lock()
	defer o.runMu.Unlock()
	o.running = false

	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.Running = false
	o.status.Shop = ""
}

func (o *RunOrchestrator) resetStatus(run *domain.RunResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = driving.RunStatus{
		Running: true,
		RunID:   run.ID,
		Mode:    run.Mode,
		State:   run.State,
	}
}

func (o *RunOrchestrator) setState(run *domain.RunResult, state domain.RunState) {
	run.State = state
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.State = state
}

func (o *RunOrchestrator) setShop(shop string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.Shop = shop
}

func (o *RunOrchestrator) recordProgress(mode domain.RunMode, outcome domain.RecordOutcome) {
	o.mu.Lock()
	o.status.RecordsProcessed++
	o.mu.Unlock()

	if o.observer != nil {
		o.observer.RecordHandled(mode, outcome)
	}
}

func (o *RunOrchestrator) notifyFinished(run *domain.RunResult) {
	if o.observer != nil {
		o.observer.RunFinished(run)
	}
}

// saveRun persists the run. History is best effort and never fails a run.
func (o *RunOrchestrator) saveRun(ctx context.Context, run *domain.RunResult) {
	if o.runs == nil {
		return
	}
	// Persist even when the run was cancelled
	if err := o.runs.Save(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("Failed to save run %s: %v", run.ID, err)
	}
}
