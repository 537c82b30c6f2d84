package driving

import (
	"context"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
)

// Orchestrator runs the staged generation pipeline for one profile.
type Orchestrator interface {
	// Run executes the stage list of complexity and returns the run record.
	// The record is returned even when err is non-nil.
	Run(ctx context.Context, profile *domain.RequirementProfile, complexity domain.ComplexityLevel,
		knowledge domain.KnowledgeContext) (*domain.PipelineRun, error)

	// Stop asks a running pipeline to abandon remaining stages.
	Stop()
}

// ExecuteOptions selects how PipelineService.Execute builds its inputs.
type ExecuteOptions struct {
	// Profile is a clarified profile. When nil, one extraction of the task is used.
	Profile *domain.RequirementProfile

	// TextMode scores complexity from the task text instead of the profile.
	TextMode bool
}

// PipelineService composes extraction, complexity, retrieval and orchestration.
type PipelineService interface {
	// Execute runs a task end to end.
	Execute(ctx context.Context, task string, opts ExecuteOptions) (*domain.PipelineRun, error)

	// Stop asks the current run to stop between stages.
	Stop()
}

// RunService reads recorded runs.
type RunService interface {
	// List returns recent runs, newest first.
	List(ctx context.Context, limit int) ([]domain.PipelineRun, error)

	// Get returns one run with its stage outputs.
	Get(ctx context.Context, id string) (*domain.PipelineRun, error)
}
