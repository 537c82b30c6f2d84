package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
)

// --- Mock implementations for scheduler testing ---

// mockSchedulerStore implements driven.SchedulerStore for testing.
type mockSchedulerStore struct {
	mu       sync.RWMutex
	tasks    map[string]*domain.ScheduledTask
	results  map[string][]domain.TaskResult
	saveErr  error
	listErr  error
	getErr   error
	pruneErr error
}

func newMockSchedulerStore() *mockSchedulerStore {
	return &mockSchedulerStore{
		tasks:   make(map[string]*domain.ScheduledTask),
		results: make(map[string][]domain.TaskResult),
	}
}

func (m *mockSchedulerStore) GetTask(_ context.Context, taskID string) (*domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	task, exists := m.tasks[taskID]
	if !exists {
		return nil, nil
	}
	// Return a copy
	taskCopy := *task
	return &taskCopy, nil
}

func (m *mockSchedulerStore) ListTasks(_ context.Context) ([]domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	tasks := make([]domain.ScheduledTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func (m *mockSchedulerStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if task == nil {
		return domain.ErrInvalidInput
	}
	taskCopy := *task
	m.tasks[task.ID] = &taskCopy
	return nil
}

func (m *mockSchedulerStore) DeleteTask(_ context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, taskID)
	return nil
}

func (m *mockSchedulerStore) RecordResult(_ context.Context, result *domain.TaskResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if result == nil {
		return domain.ErrInvalidInput
	}
	m.results[result.TaskID] = append(m.results[result.TaskID], *result)
	return nil
}

func (m *mockSchedulerStore) GetTaskHistory(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := m.results[taskID]
	if len(results) > limit {
		results = results[len(results)-limit:]
	}
	return results, nil
}

func (m *mockSchedulerStore) PruneHistory(_ context.Context, _ int) error {
	return m.pruneErr
}

// fakeArchiver counts backups.
type fakeArchiver struct {
	mu    sync.Mutex
	calls int
	count int
	err   error
}

func (a *fakeArchiver) Backup(_ context.Context) (string, int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.err != nil {
		return "", 0, a.err
	}
	return "backups/projects_test.tar.br", a.count, nil
}

func (a *fakeArchiver) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// fakeJanitor records the max age it was asked to clean with.
type fakeJanitor struct {
	mu     sync.Mutex
	maxAge time.Duration
	calls  int
}

func (j *fakeJanitor) Cleanup(_ context.Context, maxAge time.Duration) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.calls++
	j.maxAge = maxAge
	return 2, nil
}

// Ensure mocks implement interfaces
var (
	_ driven.SchedulerStore = (*mockSchedulerStore)(nil)
	_ driven.Archiver       = (*fakeArchiver)(nil)
	_ driven.Janitor        = (*fakeJanitor)(nil)
)

// ==================== Scheduler Tests ====================

func TestNewScheduler(t *testing.T) {
	config := domain.DefaultSchedulerConfig()
	store := newMockSchedulerStore()

	scheduler := NewScheduler(config, store, &fakeArchiver{}, &fakeJanitor{})

	require.NotNil(t, scheduler)
	assert.Equal(t, config.Enabled, scheduler.config.Enabled)
	assert.Equal(t, time.Minute, scheduler.tick)
}

func TestScheduler_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	config := domain.DefaultSchedulerConfig()
	store := newMockSchedulerStore()

	scheduler := NewScheduler(config, store, &fakeArchiver{}, &fakeJanitor{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start scheduler in goroutine
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = scheduler.Start(ctx)
	}()

	// Give it time to start
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, scheduler.Stop())
	wg.Wait()

	// Stop is idempotent.
	require.NoError(t, scheduler.Stop())
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), newMockSchedulerStore(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- scheduler.Start(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestScheduler_DisabledReturnsImmediately(t *testing.T) {
	config := domain.DefaultSchedulerConfig()
	config.Enabled = false
	store := newMockSchedulerStore()

	scheduler := NewScheduler(config, store, &fakeArchiver{}, nil)

	require.NoError(t, scheduler.Start(context.Background()))
	tasks, err := store.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), newMockSchedulerStore(), nil, nil)

	// Stop without starting should be safe
	require.NoError(t, scheduler.Stop())
}

func TestScheduler_DoubleStart(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), newMockSchedulerStore(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// First start
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = scheduler.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)

	// Second start should return immediately (already running)
	assert.NoError(t, scheduler.Start(context.Background()))

	scheduler.Stop() //nolint:errcheck
	wg.Wait()
}

func TestScheduler_InitialiseTasks(t *testing.T) {
	store := newMockSchedulerStore()
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, nil, nil)

	ctx := context.Background()
	require.NoError(t, scheduler.initialiseTasks(ctx))

	backup, err := store.GetTask(ctx, domain.TaskIDProjectsBackup)
	require.NoError(t, err)
	require.NotNil(t, backup)
	assert.Equal(t, "Projects Backup", backup.Name)
	assert.Equal(t, 6*time.Hour, backup.Interval)
	assert.True(t, backup.Enabled)

	cleanup, err := store.GetTask(ctx, domain.TaskIDTempCleanup)
	require.NoError(t, err)
	require.NotNil(t, cleanup)
	assert.Equal(t, "Temp Cleanup", cleanup.Name)
}

func TestScheduler_InitialiseTasks_StoreError(t *testing.T) {
	store := newMockSchedulerStore()
	store.getErr = errors.New("db locked")
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, nil, nil)

	assert.Error(t, scheduler.initialiseTasks(context.Background()))
}

func TestScheduler_EnsureTask_UpdateInterval(t *testing.T) {
	store := newMockSchedulerStore()
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, nil, nil)
	ctx := context.Background()

	// Create initial task
	taskCfg := domain.TaskConfig{
		Enabled:  true,
		Interval: 1 * time.Hour,
	}
	require.NoError(t, scheduler.ensureTask(ctx, "test-task", "Test Task", taskCfg))

	// Update with new interval
	taskCfg.Interval = 2 * time.Hour
	taskCfg.Enabled = false
	require.NoError(t, scheduler.ensureTask(ctx, "test-task", "Test Task", taskCfg))

	task, err := store.GetTask(ctx, "test-task")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, task.Interval)
	assert.False(t, task.Enabled)
}

func TestScheduler_RunOnce_Backup(t *testing.T) {
	store := newMockSchedulerStore()
	archiver := &fakeArchiver{count: 3}
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, archiver, nil)
	ctx := context.Background()

	require.NoError(t, scheduler.RunOnce(ctx, domain.TaskIDProjectsBackup))
	assert.Equal(t, 1, archiver.Calls())

	history, err := store.GetTaskHistory(ctx, domain.TaskIDProjectsBackup, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Success)
	assert.Equal(t, 3, history[0].ItemsProcessed)

	task, err := store.GetTask(ctx, domain.TaskIDProjectsBackup)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.False(t, task.LastSuccess.IsZero())
	assert.True(t, task.NextRun.After(task.LastRun))
}

func TestScheduler_RunOnce_CleanupUsesTempMaxAge(t *testing.T) {
	config := domain.DefaultSchedulerConfig()
	config.TempMaxAge = 90 * time.Minute
	janitor := &fakeJanitor{}
	scheduler := NewScheduler(config, newMockSchedulerStore(), nil, janitor)

	require.NoError(t, scheduler.RunOnce(context.Background(), domain.TaskIDTempCleanup))
	assert.Equal(t, 1, janitor.calls)
	assert.Equal(t, 90*time.Minute, janitor.maxAge)
}

func TestScheduler_RunOnce_FailureIsRecorded(t *testing.T) {
	store := newMockSchedulerStore()
	archiver := &fakeArchiver{err: errors.New("disk full")}
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, archiver, nil)
	ctx := context.Background()

	err := scheduler.RunOnce(ctx, domain.TaskIDProjectsBackup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	history, _ := store.GetTaskHistory(ctx, domain.TaskIDProjectsBackup, 10)
	require.Len(t, history, 1)
	assert.False(t, history[0].Success)

	task, _ := store.GetTask(ctx, domain.TaskIDProjectsBackup)
	assert.Equal(t, "disk full", task.LastError)
}

func TestScheduler_RunOnce_NilCollaborators(t *testing.T) {
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), newMockSchedulerStore(), nil, nil)

	assert.NoError(t, scheduler.RunOnce(context.Background(), domain.TaskIDProjectsBackup))
	assert.NoError(t, scheduler.RunOnce(context.Background(), domain.TaskIDTempCleanup))
}

func TestScheduler_CheckAndRunDueTasks(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := newMockSchedulerStore()
	archiver := &fakeArchiver{}
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, archiver, nil)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{
		ID:       domain.TaskIDProjectsBackup,
		Name:     "Projects Backup",
		Interval: 1 * time.Hour,
		NextRun:  now.Add(-1 * time.Minute), // Already past due
		Enabled:  true,
	}))
	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{
		ID:       domain.TaskIDTempCleanup,
		Name:     "Temp Cleanup",
		Interval: 1 * time.Hour,
		NextRun:  now.Add(-1 * time.Minute),
		Enabled:  false,
	}))

	scheduler.checkAndRunDueTasks(ctx)
	scheduler.wg.Wait()

	assert.Equal(t, 1, archiver.Calls())
}

func TestScheduler_RunOnce_UnknownTaskID(t *testing.T) {
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), newMockSchedulerStore(), nil, nil)

	err := scheduler.RunOnce(context.Background(), "unknown-task")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown task ID")
}
