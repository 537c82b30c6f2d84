package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yukio-aki/ai-office/internal/adapters/driven/config/file"
	"github.com/Yukio-aki/ai-office/internal/core/domain"
)

// setupTestStore creates a store in a temporary directory.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "aioffice-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}
	return store, cleanup
}

func newTestRun(id string, started time.Time) *domain.PipelineRun {
	profile := domain.NewRequirementProfile()
	profile.InitialTask = "landing page with falling stars"
	profile.ProjectType = domain.ProjectTypeWebsite
	profile.Colors = []string{"blue", "gold"}

	return &domain.PipelineRun{
		ID:          id,
		ProjectName: "stars",
		Profile:     profile,
		Complexity: domain.ComplexityLevel{
			Level:      2,
			Name:       "Simple",
			Stages:     []domain.Stage{domain.StageTranslate, domain.StageGenerate, domain.StageReview},
			MaxRetries: 2,
			Score:      3,
		},
		Status:    domain.RunStatusRunning,
		StartedAt: started,
	}
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.Equal(t, dbFileName, filepath.Base(store.Path()))
	_, err := os.Stat(store.Path())
	assert.NoError(t, err)

	version, err := store.schemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestNewStore_DefaultsToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv(file.HomeEnv, home)

	store, err := NewStore("")
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(home, "data", dbFileName), store.Path())
}

func TestNewStore_ReopenSkipsAppliedMigrations(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.RunStore().SaveRun(context.Background(), newTestRun("r1", time.Now())))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	var applied int
	require.NoError(t, second.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, 1, applied)

	run, err := second.RunStore().GetRun(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "stars", run.ProjectName)
}

func TestRunStore_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	runs := store.RunStore()

	started := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	run := newTestRun("20260501_100000", started)
	run.Append(domain.StageTranslate, 0, "technical requirements")
	run.Append(domain.StageGenerate, 0, "<html></html>")
	run.Append(domain.StageReview, 1, "fix the colors")
	run.Append(domain.StageReview, 2, "APPROVED")
	run.Plan = &domain.Plan{TechStack: []string{"html"}, FileStructure: []string{"index.html"}}
	run.Status = domain.RunStatusSucceeded
	run.Review = domain.ReviewApproved
	run.ArtifactPath = "/tmp/runs/20260501_100000/index.html"
	run.EndedAt = started.Add(time.Minute)

	require.NoError(t, runs.SaveRun(ctx, run))

	got, err := runs.GetRun(ctx, run.ID)
	require.NoError(t, err)

	assert.Equal(t, run.ProjectName, got.ProjectName)
	assert.Equal(t, domain.RunStatusSucceeded, got.Status)
	assert.Equal(t, domain.ReviewApproved, got.Review)
	assert.Equal(t, run.ArtifactPath, got.ArtifactPath)
	assert.Equal(t, run.Complexity, got.Complexity)
	assert.Equal(t, run.Plan, got.Plan)
	assert.Equal(t, run.Profile.Colors, got.Profile.Colors)
	assert.Equal(t, domain.ProjectTypeWebsite, got.Profile.ProjectType)
	assert.True(t, got.StartedAt.Equal(started))
	assert.True(t, got.EndedAt.Equal(started.Add(time.Minute)))

	require.Len(t, got.Outputs, 4)
	assert.Equal(t, "review#1", got.Outputs[2].Label())
	assert.Equal(t, "APPROVED", got.Outputs[3].Output)
	assert.Equal(t, 2, got.Outputs[3].Attempt)
}

func TestRunStore_SaveRunReplacesOutputs(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	runs := store.RunStore()

	run := newTestRun("r1", time.Now())
	run.Append(domain.StageTranslate, 0, "first")
	require.NoError(t, runs.SaveRun(ctx, run))

	run.Append(domain.StageGenerate, 0, "second")
	run.Status = domain.RunStatusFailed
	run.Error = domain.ErrStopped.Error()
	require.NoError(t, runs.SaveRun(ctx, run))

	got, err := runs.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, got.Outputs, 2)
	assert.Equal(t, domain.RunStatusFailed, got.Status)
	assert.Equal(t, domain.ErrStopped.Error(), got.Error)
	assert.Nil(t, got.Plan)
	assert.True(t, got.EndedAt.IsZero())
}

func TestRunStore_InvalidInput(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	runs := store.RunStore()
	assert.ErrorIs(t, runs.SaveRun(context.Background(), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, runs.SaveRun(context.Background(), &domain.PipelineRun{}), domain.ErrInvalidInput)
}

func TestRunStore_GetRun_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.RunStore().GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStore_ListRuns(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	runs := store.RunStore()

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		run := newTestRun(id, base.Add(time.Duration(i)*time.Minute))
		run.Append(domain.StageTranslate, 0, "out")
		require.NoError(t, runs.SaveRun(ctx, run))
	}

	list, err := runs.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
	assert.Empty(t, list[0].Outputs)

	all, err := runs.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRunStore_ListRuns_SubSecondOrder(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	runs := store.RunStore()

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, runs.SaveRun(ctx, newTestRun("whole", base)))
	require.NoError(t, runs.SaveRun(ctx, newTestRun("half", base.Add(500*time.Millisecond))))

	list, err := runs.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "half", list[0].ID)
}

func TestRunStore_DeleteRun(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	runs := store.RunStore()

	run := newTestRun("doomed", time.Now())
	run.Append(domain.StageTranslate, 0, "out")
	require.NoError(t, runs.SaveRun(ctx, run))
	require.NoError(t, runs.DeleteRun(ctx, "doomed"))

	_, err := runs.GetRun(ctx, "doomed")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var stages int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM run_stages").Scan(&stages))
	assert.Zero(t, stages)
}

func TestRunStore_CreateRun_RejectsTakenID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	runs := store.RunStore()

	first := newTestRun("20260501_100000", time.Now())
	first.Append(domain.StageTranslate, 1, "first")
	require.NoError(t, runs.CreateRun(ctx, first))

	second := newTestRun("20260501_100000", time.Now())
	second.ProjectName = "other"
	assert.ErrorIs(t, runs.CreateRun(ctx, second), domain.ErrAlreadyExists)

	got, err := runs.GetRun(ctx, "20260501_100000")
	require.NoError(t, err)
	assert.Equal(t, "stars", got.ProjectName)
	require.Len(t, got.Outputs, 1)
	assert.Equal(t, "first", got.Outputs[0].Output)

	// Later stage saves still replace the created row.
	first.Status = domain.RunStatusSucceeded
	require.NoError(t, runs.SaveRun(ctx, first))
	got, err = runs.GetRun(ctx, "20260501_100000")
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusSucceeded, got.Status)
}
