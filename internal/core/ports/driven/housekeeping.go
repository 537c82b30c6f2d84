package driven

import (
	"context"
	"time"
)

// Archiver produces backups of the projects collection.
type Archiver interface {
	// Backup writes one archive and returns its path and the number of files archived.
	Backup(ctx context.Context) (string, int, error)
}

// Janitor removes stale temporary files.
type Janitor interface {
	// Cleanup removes temporary files older than maxAge and returns how many were removed.
	Cleanup(ctx context.Context, maxAge time.Duration) (int, error)
}
