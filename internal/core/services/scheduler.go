package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driving"
	"github.com/Yukio-aki/ai-office/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// historyKeep is how many results are kept per task.
const historyKeep = 100

// Scheduler runs housekeeping tasks in the background. It shares nothing
// with the orchestrator except the filesystem, and task failures are
// recorded and logged, never returned to a pipeline run.
type Scheduler struct {
	config   domain.SchedulerConfig
	store    driven.SchedulerStore
	archiver driven.Archiver
	janitor  driven.Janitor

	// tick is how often due tasks are checked.
	tick time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
// archiver and janitor may be nil; their tasks then do nothing.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	archiver driven.Archiver,
	janitor driven.Janitor,
) *Scheduler {
	return &Scheduler{
		config:   config,
		store:    store,
		archiver: archiver,
		janitor:  janitor,
		tick:     time.Minute,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		logger.Debug("scheduler: disabled")
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Warn("scheduler: failed to initialise tasks: %v", err)
	}

	err := s.run(ctx, stopCh)

	s.mu.Lock()
	if s.running && s.stopCh == stopCh {
		s.running = false
	}
	s.mu.Unlock()

	// Tasks started by this loop finish before Start returns.
	s.wg.Wait()
	return err
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

	s.wg.Wait()
	return nil
}

// RunOnce executes one task now, regardless of its schedule, and records
// the result. The task error is returned so the CLI can report it.
func (s *Scheduler) RunOnce(ctx context.Context, taskID string) error {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("get task %s: %w", taskID, err)
	}
	if task == nil {
		cfg := s.config.GetTaskConfig(taskID)
		task = &domain.ScheduledTask{ID: taskID, Name: taskName(taskID), Interval: cfg.Interval, Enabled: cfg.Enabled}
	}
	result := s.execute(ctx, task)
	if !result.Success {
		return fmt.Errorf("task %s: %s", taskID, result.Error)
	}
	return nil
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	for _, id := range []string{domain.TaskIDProjectsBackup, domain.TaskIDTempCleanup} {
		taskCfg := s.config.GetTaskConfig(id)
		if err := s.ensureTask(ctx, id, taskName(id), taskCfg); err != nil {
			return err
		}
	}
	return nil
}

func taskName(id string) string {
	switch id {
	case domain.TaskIDProjectsBackup:
		return "Projects Backup"
	case domain.TaskIDTempCleanup:
		return "Temp Cleanup"
	default:
		return id
	}
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
func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		task := tasks[i]
		if !task.Enabled {
			continue
		}
		if task.NextRun.IsZero() || !task.NextRun.After(now) {
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.execute(ctx, &task)
			}()
		}
	}
}

// execute runs a single task and records its outcome.
func (s *Scheduler) execute(ctx context.Context, task *domain.ScheduledTask) *domain.TaskResult {
	result := &domain.TaskResult{
		TaskID:    task.ID,
		StartedAt: time.Now(),
	}

	var err error
	switch task.ID {
	case domain.TaskIDProjectsBackup:
		result.ItemsProcessed, err = s.runBackup(ctx)
	case domain.TaskIDTempCleanup:
		result.ItemsProcessed, err = s.runCleanup(ctx)
	default:
		err = fmt.Errorf("unknown task ID: %s", task.ID)
	}

	result.EndedAt = time.Now()
	if err != nil {
		result.Success = false
		result.Error = err.Error()
		task.LastError = err.Error()
		logger.Warn("scheduler: task %s failed: %v", task.ID, err)
	} else {
		result.Success = true
		task.LastError = ""
		task.LastSuccess = result.EndedAt
		logger.Debug("scheduler: task %s processed %d items", task.ID, result.ItemsProcessed)
	}

	task.LastRun = result.StartedAt
	task.NextRun = result.EndedAt.Add(task.Interval)

	if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
		logger.Warn("scheduler: failed to save task %s: %v", task.ID, saveErr)
	}
	if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
		logger.Warn("scheduler: failed to record result for %s: %v", task.ID, recordErr)
	}
	if pruneErr := s.store.PruneHistory(ctx, historyKeep); pruneErr != nil {
		logger.Warn("scheduler: failed to prune history: %v", pruneErr)
	}
	return result
}

// runBackup archives the projects collection.
func (s *Scheduler) runBackup(ctx context.Context) (int, error) {
	if s.archiver == nil {
		return 0, nil
	}
	path, count, err := s.archiver.Backup(ctx)
	if err != nil {
		return 0, err
	}
	if path != "" {
		logger.Info("scheduler: backup written to %s", path)
	}
	return count, nil
}

// runCleanup removes stale temporary files.
func (s *Scheduler) runCleanup(ctx context.Context) (int, error) {
	if s.janitor == nil {
		return 0, nil
	}
	return s.janitor.Cleanup(ctx, s.config.TempMaxAge)
}
