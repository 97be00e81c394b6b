package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/core/ports/driven"
	"github.com/custodia-labs/stocksync/internal/core/ports/driving"
	"github.com/custodia-labs/stocksync/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// taskNames are the display names of the built-in tasks.
var taskNames = map[string]string{
	domain.TaskIDInventorySync: "Inventory Sync",
	domain.TaskIDZeroOut:       "Zero Out Other Locations",
}

// Scheduler triggers reconciliation runs on their configured intervals.
// It is a pure core service with no external control API.
type Scheduler struct {
	config     domain.SchedulerConfig
	store      driven.SchedulerStore
	reconciler driving.Reconciler
	tick       time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	reconciler driving.Reconciler,
) *Scheduler {
	return &Scheduler{
		config:     config,
		store:      store,
		reconciler: reconciler,
		tick:       1 * time.Minute,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	// Initialise tasks in store
	if err := s.initialiseTasks(ctx); err != nil {
		logger.Warn("scheduler: failed to initialise tasks: %v", err)
	}

	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	// Wait for a running reconciliation to complete
	s.wg.Wait()

	return nil
}

// initialiseTasks ensures all configured tasks exist in the store.
// Tasks that are disabled in configuration are disabled in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	for _, id := range []string{domain.TaskIDInventorySync, domain.TaskIDZeroOut} {
		taskCfg := s.config.GetTaskConfig(id)
		if taskCfg.Interval <= 0 {
			continue
		}
		if err := s.ensureTask(ctx, id, taskNames[id], taskCfg); err != nil {
			return err
		}
	}
	return nil
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  time.Now().Add(cfg.Interval),
		}
	} else {
		// Update interval if changed
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			// Recalculate next run from now
			task.NextRun = time.Now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	// Check for due tasks immediately on startup
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks runs the tasks that are due, one after another.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	var due []domain.ScheduledTask
	for _, task := range tasks {
		if !task.Enabled {
			continue
		}
		if task.NextRun.IsZero() || !task.NextRun.After(now) {
			due = append(due, task)
		}
	}
	if len(due) == 0 {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for i := range due {
			s.runTask(ctx, &due[i])
		}
	}()
}

// runTask executes a single task and records its result.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	mode, ok := domain.TaskRunMode(task.ID)
	if !ok {
		logger.Warn("scheduler: unknown task ID: %s", task.ID)
		return
	}

	result := &domain.TaskResult{
		TaskID:    task.ID,
		StartedAt: time.Now(),
	}

	var err error
	result.ItemsProcessed, err = s.runReconcile(ctx, mode)
	if errors.Is(err, domain.ErrRunInProgress) {
		// Leave the task due so the next tick picks it up
		logger.Info("scheduler: %s deferred, a run is in progress", task.ID)
		return
	}

	result.EndedAt = time.Now()
	if err != nil {
		result.Success = false
		result.Error = err.Error()
		task.LastError = err.Error()
	} else {
		result.Success = true
		task.LastError = ""
		task.LastSuccess = result.EndedAt
	}

	// Update task state
	task.LastRun = result.StartedAt
	task.NextRun = result.EndedAt.Add(task.Interval)

	if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
		logger.Warn("scheduler: failed to save task %s: %v", task.ID, saveErr)
	}

	// Record result for history
	if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
		logger.Warn("scheduler: failed to record result for %s: %v", task.ID, recordErr)
	}

	// Prune old history (keep last 100 results per task)
	if pruneErr := s.store.PruneHistory(ctx, 100); pruneErr != nil {
		logger.Warn("scheduler: failed to prune history: %v", pruneErr)
	}
}

// runReconcile runs the reconciler and returns the processed row count.
func (s *Scheduler) runReconcile(ctx context.Context, mode domain.RunMode) (int, error) {
	if s.reconciler == nil {
		return 0, nil
	}

	run, err := s.reconciler.Run(ctx, domain.RunRequest{Mode: mode, Source: domain.FeedSourceFTP})
	if run == nil {
		return 0, err
	}
	return run.TotalRows(), err
}
