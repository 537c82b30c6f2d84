package driven

import (
	"context"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
)

// RunStore persists pipeline runs and their stage outputs.
// CreateRun claims a run ID once; SaveRun is called after every stage, so
// it must be an upsert.
type RunStore interface {
	// CreateRun inserts a new run.
	// Returns domain.ErrAlreadyExists if the ID is taken.
	CreateRun(ctx context.Context, run *domain.PipelineRun) error

	// SaveRun creates or replaces a run and all of its stage outputs.
	SaveRun(ctx context.Context, run *domain.PipelineRun) error

	// GetRun retrieves a run by ID.
	// Returns domain.ErrNotFound if the run does not exist.
	GetRun(ctx context.Context, id string) (*domain.PipelineRun, error)

	// ListRuns returns the most recent runs first, without stage outputs.
	ListRuns(ctx context.Context, limit int) ([]domain.PipelineRun, error)

	// DeleteRun removes a run and its stage outputs.
	DeleteRun(ctx context.Context, id string) error
}
