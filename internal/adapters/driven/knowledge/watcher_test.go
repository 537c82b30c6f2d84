package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestCorpus_Watch(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	corpus, err := NewCorpus(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- corpus.Watch(ctx, func() { changed <- struct{}{} })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.json"), []byte(`{"rules": []}`), 0o644))

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for change notification")
	}

	// A burst of writes is coalesced into a single notification.
	select {
	case <-changed:
		t.Fatal("expected debounced notification")
	case <-time.After(2 * debounce):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestCorpus_WatchMissingDir(t *testing.T) {
	corpus, err := NewCorpus(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)

	err = corpus.Watch(context.Background(), func() {})
	assert.Error(t, err)
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: "/k/index.json", Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: "/k/html/a.html", Op: fsnotify.Create}, true},
		{"remove", fsnotify.Event{Name: "/k/html/a.html", Op: fsnotify.Remove}, true},
		{"chmod", fsnotify.Event{Name: "/k/index.json", Op: fsnotify.Chmod}, false},
		{"temp file", fsnotify.Event{Name: "/k/.index.json123.tmp", Op: fsnotify.Create}, false},
		{"editor backup", fsnotify.Event{Name: "/k/~index.json", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevant(tt.event))
		})
	}
}
