package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driving"
	"github.com/Yukio-aki/ai-office/internal/logger"
)

// Ensure the pipeline services implement their interfaces.
var (
	_ driving.PipelineService = (*PipelineService)(nil)
	_ driving.RunService      = (*RunService)(nil)
)

// PipelineService turns a task into an artifact: extraction (when no
// clarified profile is given), complexity scoring, retrieval, orchestration.
type PipelineService struct {
	extraction   driving.ExtractionService
	complexity   driving.ComplexityAnalyzer
	knowledge    driving.KnowledgeService
	orchestrator driving.Orchestrator
	settings     domain.KnowledgeSettings
	stops        stopRegistry
}

// NewPipelineService creates a pipeline service.
func NewPipelineService(
	extraction driving.ExtractionService,
	complexity driving.ComplexityAnalyzer,
	knowledge driving.KnowledgeService,
	orchestrator driving.Orchestrator,
	settings domain.KnowledgeSettings,
) *PipelineService {
	return &PipelineService{
		extraction:   extraction,
		complexity:   complexity,
		knowledge:    knowledge,
		orchestrator: orchestrator,
		settings:     settings,
	}
}

// Execute runs a task end to end and returns the run record, which is
// non-nil whenever orchestration started.
func (s *PipelineService) Execute(ctx context.Context, task string, opts driving.ExecuteOptions) (*domain.PipelineRun, error) {
	sig, done := s.stops.begin(stopSignalFrom(ctx))
	defer done()
	ctx = withStopSignal(ctx, sig)

	task = strings.TrimSpace(task)

	profile := opts.Profile
	if profile == nil {
		if task == "" {
			return nil, fmt.Errorf("%w: empty task", domain.ErrInvalidInput)
		}
		profile = domain.NewRequirementProfile()
		if err := profile.SetInitialTask(task); err != nil {
			return nil, err
		}
		profile, _ = s.extraction.Extract(ctx, task, profile)
	} else if profile.InitialTask == "" && task != "" {
		profile = profile.Clone()
		if err := profile.SetInitialTask(task); err != nil {
			return nil, err
		}
	}

	var level domain.ComplexityLevel
	if opts.TextMode {
		level = s.complexity.AnalyzeText(firstNonEmpty(task, profile.InitialTask))
	} else {
		level = s.complexity.AnalyzeProfile(profile)
	}
	logger.Info("pipeline: complexity L%d %s (score %d)", level.Level, level.Name, level.Score)

	var knowledge domain.KnowledgeContext
	if s.knowledge != nil {
		knowledge = s.knowledge.ContextFor(profile, s.settings.TopK, s.settings.MaxRules)
		logger.Debug("pipeline: %d examples, %d rules", len(knowledge.Items), len(knowledge.Rules))
	}

	return s.orchestrator.Run(ctx, profile, level, knowledge)
}

// Stop asks the executions in flight to stop before their next stage. A
// stop during extraction or retrieval prevents every Generator stage. With
// nothing in flight the request applies to the next execution.
func (s *PipelineService) Stop() {
	s.stops.stop()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// RunService reads recorded runs.
type RunService struct {
	runs driven.RunStore
}

// NewRunService creates a run service.
func NewRunService(runs driven.RunStore) *RunService {
	return &RunService{runs: runs}
}

// List returns the most recent runs first.
func (s *RunService) List(ctx context.Context, limit int) ([]domain.PipelineRun, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.runs.ListRuns(ctx, limit)
}

// Get returns one run with its stage outputs.
func (s *RunService) Get(ctx context.Context, id string) (*domain.PipelineRun, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty run id", domain.ErrInvalidInput)
	}
	return s.runs.GetRun(ctx, id)
}
