package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
)

// Ensure ArtifactStore implements the interface.
var _ driven.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore writes run files under <home>/runs and copies finished
// artifacts into <home>/projects.
type ArtifactStore struct {
	runsDir     string
	projectsDir string
}

// NewArtifactStore creates an artifact store rooted at home.
// If home is empty, the application home is used.
func NewArtifactStore(home string) (*ArtifactStore, error) {
	root, err := resolveHome(home)
	if err != nil {
		return nil, err
	}
	return &ArtifactStore{
		runsDir:     filepath.Join(root, "runs"),
		projectsDir: filepath.Join(root, "projects"),
	}, nil
}

// RunDir returns the directory of a run.
func (s *ArtifactStore) RunDir(runID string) string {
	return filepath.Join(s.runsDir, runID)
}

// ProjectsDir returns the stable projects collection.
func (s *ArtifactStore) ProjectsDir() string {
	return s.projectsDir
}

// WriteRunFile writes a file inside the run directory.
func (s *ArtifactStore) WriteRunFile(ctx context.Context, runID, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !validID(runID) || !validID(name) {
		return "", domain.ErrInvalidInput
	}

	path := filepath.Join(s.RunDir(runID), name)
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}

// CopyToProjects copies a run file into projects/<projectKey>/.
func (s *ArtifactStore) CopyToProjects(ctx context.Context, runID, name, projectKey string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	projectKey = sanitiseKey(projectKey)
	if !validID(runID) || !validID(name) || !validID(projectKey) {
		return "", domain.ErrInvalidInput
	}

	data, err := os.ReadFile(filepath.Join(s.RunDir(runID), name))
	if errors.Is(err, os.ErrNotExist) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading run file: %w", err)
	}

	dest := filepath.Join(s.projectsDir, projectKey, name)
	if err := writeFileAtomic(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("copying to projects: %w", err)
	}
	return dest, nil
}

// sanitiseKey replaces path separators so a project name derived from free
// text always maps to a single directory.
func sanitiseKey(key string) string {
	key = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, strings.TrimSpace(key))
	return strings.Trim(key, ".")
}
