package driven

import "context"

// ArtifactStore writes run-scoped files and the stable projects collection.
type ArtifactStore interface {
	// WriteRunFile writes a file inside the run directory and returns its path.
	WriteRunFile(ctx context.Context, runID, name string, data []byte) (string, error)

	// CopyToProjects copies a run file into projects/<projectKey>/ and
	// returns the destination path.
	CopyToProjects(ctx context.Context, runID, name, projectKey string) (string, error)

	// RunDir returns the directory of a run.
	RunDir(runID string) string
}
