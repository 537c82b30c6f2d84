package knowledge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Yukio-aki/ai-office/internal/logger"
)

// debounce coalesces bursts of events, e.g. an editor's write+rename.
const debounce = 250 * time.Millisecond

// Watch calls onChange after the corpus changes on disk. Blocks until ctx
// is cancelled. Newly created subdirectories are watched too.
func (c *Corpus) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, c.dir); err != nil {
		return err
	}

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						logger.Warn("knowledge: %v", err)
					}
				}
			}
			fire = time.After(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("knowledge: watcher error: %v", err)

		case <-fire:
			fire = nil
			onChange()
		}
	}
}

// relevant filters out attribute changes and our own temporaries.
func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if ok, _ := filepath.Match("*.tmp", base); ok {
		return false
	}
	return base != "" && base[0] != '~'
}

// addTree watches dir and all of its subdirectories.
func addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
