package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
)

// Ensure Janitor implements the interface.
var _ driven.Janitor = (*Janitor)(nil)

// Janitor removes temporary files left behind by interrupted writes.
type Janitor struct {
	root string
	now  func() time.Time
}

// NewJanitor creates a janitor that sweeps home.
// If home is empty, the application home is used.
func NewJanitor(home string) (*Janitor, error) {
	root, err := resolveHome(home)
	if err != nil {
		return nil, err
	}
	return &Janitor{root: root, now: time.Now}, nil
}

// Cleanup removes *.tmp files under the root older than maxAge.
func (j *Janitor) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := j.now().Add(-maxAge)
	removed := 0

	err := filepath.WalkDir(j.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if ok, _ := filepath.Match(tmpPattern, d.Name()); !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", path, err)
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, err
	}
	return removed, nil
}
