package fs

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

func newSession(t *testing.T, at time.Time) *domain.DialogState {
	t.Helper()
	state := domain.NewDialogState(at)
	state.Profile.InitialTask = "a parser for news headlines"
	state.Profile.ProjectType = domain.ProjectTypeParser
	state.AddMessage(domain.RoleUser, "a parser for news headlines")
	state.TurnCount = 1
	return state
}

func TestSessionStore_SaveAndLoad(t *testing.T) {
	store, err := NewSessionStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	state := newSession(t, time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC))
	require.NoError(t, store.Save(ctx, state))

	loaded, err := store.Load(ctx, state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, state.SessionID, loaded.SessionID)
	assert.Equal(t, 1, loaded.TurnCount)
	assert.Equal(t, domain.ProjectTypeParser, loaded.Profile.ProjectType)
	require.Len(t, loaded.History, 1)
	assert.Equal(t, "a parser for news headlines", loaded.History[0].Text)

	_, err = os.Stat(filepath.Join(store.Dir(), state.SessionID+".json"))
	assert.NoError(t, err)
}

func TestSessionStore_SaveLeavesNoTempFiles(t *testing.T) {
	store, err := NewSessionStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	state := newSession(t, time.Now())
	require.NoError(t, store.Save(ctx, state))
	state.TurnCount = 2
	require.NoError(t, store.Save(ctx, state))

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, state.SessionID+".json", entries[0].Name())
}

func TestSessionStore_LoadNotFound(t *testing.T) {
	store, err := NewSessionStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(context.Background(), "20990101_000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.Load(context.Background(), "../escape")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionStore_SaveInvalid(t *testing.T) {
	store, err := NewSessionStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	assert.ErrorIs(t, store.Save(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.Save(ctx, &domain.DialogState{SessionID: "a/b"}), domain.ErrInvalidInput)
}

func TestSessionStore_LoadCorrupt(t *testing.T) {
	store, err := NewSessionStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(store.Dir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "bad.json"), []byte("{not json"), 0o600))

	_, err = store.Load(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionStore_ListAndLatest(t *testing.T) {
	store, err := NewSessionStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	_, err = store.Latest(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	older := newSession(t, time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))
	newer := newSession(t, time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, store.Save(ctx, older))
	require.NoError(t, store.Save(ctx, newer))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(store.Dir(), older.SessionID+".json"), past, past))

	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{newer.SessionID, older.SessionID}, ids)

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, newer.SessionID, latest.SessionID)
}

func TestNewSessionStore_DefaultsToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv(file.HomeEnv, home)

	store, err := NewSessionStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "dialogs"), store.Dir())
}
