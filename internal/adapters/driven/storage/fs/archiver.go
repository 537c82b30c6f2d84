package fs

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
)

// backupLayout names backup archives by creation time.
const backupLayout = "20060102_150405"

// Ensure Archiver implements the interface.
var _ driven.Archiver = (*Archiver)(nil)

// Archiver writes brotli-compressed tarballs of the projects collection.
type Archiver struct {
	projectsDir string
	backupsDir  string
	now         func() time.Time
}

// NewArchiver creates an archiver rooted at home.
// If home is empty, the application home is used.
func NewArchiver(home string) (*Archiver, error) {
	root, err := resolveHome(home)
	if err != nil {
		return nil, err
	}
	return &Archiver{
		projectsDir: filepath.Join(root, "projects"),
		backupsDir:  filepath.Join(root, "backups"),
		now:         time.Now,
	}, nil
}

// Backup archives every regular file under projects/. When there is
// nothing to archive no file is written and the path is empty.
func (a *Archiver) Backup(ctx context.Context) (string, int, error) {
	if _, err := os.Stat(a.projectsDir); errors.Is(err, os.ErrNotExist) {
		return "", 0, nil
	}
	if err := os.MkdirAll(a.backupsDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("creating backups directory: %w", err)
	}

	name := "projects_" + a.now().Format(backupLayout) + ".tar.br"
	dest := filepath.Join(a.backupsDir, name)

	tmp, err := os.CreateTemp(a.backupsDir, "."+name+tmpPattern)
	if err != nil {
		return "", 0, fmt.Errorf("creating temp archive: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after rename

	count, err := a.writeArchive(ctx, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", 0, err
	}
	if count == 0 {
		return "", 0, nil
	}

	if err := os.Rename(tmpName, dest); err != nil {
		return "", 0, fmt.Errorf("finalising archive: %w", err)
	}
	return dest, count, nil
}

func (a *Archiver) writeArchive(ctx context.Context, w io.Writer) (int, error) {
	bw := brotli.NewWriterLevel(w, brotli.DefaultCompression)
	tw := tar.NewWriter(bw)

	count := 0
	walkErr := filepath.WalkDir(a.projectsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(a.projectsDir, path)
		if err != nil {
			return err
		}
		if err := addFile(tw, path, filepath.ToSlash(rel)); err != nil {
			return fmt.Errorf("archiving %s: %w", rel, err)
		}
		count++
		return nil
	})
	if walkErr != nil {
		return 0, walkErr
	}

	if err := tw.Close(); err != nil {
		return 0, fmt.Errorf("closing tar stream: %w", err)
	}
	if err := bw.Close(); err != nil {
		return 0, fmt.Errorf("closing brotli stream: %w", err)
	}
	return count, nil
}

func addFile(tw *tar.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = name

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err = io.Copy(tw, f)
	return err
}
