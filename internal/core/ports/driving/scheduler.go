package driving

import "context"

// Scheduler runs background housekeeping (project backups, temp cleanup).
// It never blocks or is blocked by a pipeline run.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops all running tasks.
	Stop() error

	// RunOnce executes a single task immediately and records its result.
	RunOnce(ctx context.Context, taskID string) error
}
