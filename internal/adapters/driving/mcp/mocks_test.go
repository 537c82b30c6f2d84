package mcp

import (
	"context"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driving"
)

// mockComplexityAnalyzer is a mock implementation of driving.ComplexityAnalyzer.
type mockComplexityAnalyzer struct {
	level    domain.ComplexityLevel
	lastTask string
}

func (m *mockComplexityAnalyzer) AnalyzeText(task string) domain.ComplexityLevel {
	m.lastTask = task
	return m.level
}

func (m *mockComplexityAnalyzer) AnalyzeProfile(_ *domain.RequirementProfile) domain.ComplexityLevel {
	return m.level
}

// mockKnowledgeService is a mock implementation of driving.KnowledgeService.
type mockKnowledgeService struct {
	results  []domain.ScoredItem
	gotTech  string
	gotKeys  []string
	gotLimit int
}

func (m *mockKnowledgeService) Search(tech string, keywords []string, limit int) []domain.ScoredItem {
	m.gotTech = tech
	m.gotKeys = keywords
	m.gotLimit = limit
	return m.results
}

func (m *mockKnowledgeService) Rules(int) []string { return nil }

func (m *mockKnowledgeService) ContextFor(*domain.RequirementProfile, int, int) domain.KnowledgeContext {
	return domain.KnowledgeContext{}
}

func (m *mockKnowledgeService) Reload(context.Context) error { return nil }

// mockPipelineService is a mock implementation of driving.PipelineService.
type mockPipelineService struct {
	run     *domain.PipelineRun
	err     error
	gotTask string
	gotOpts driving.ExecuteOptions
}

func (m *mockPipelineService) Execute(_ context.Context, task string, opts driving.ExecuteOptions) (*domain.PipelineRun, error) {
	m.gotTask = task
	m.gotOpts = opts
	return m.run, m.err
}

func (m *mockPipelineService) Stop() {}

// mockRunService is a mock implementation of driving.RunService.
type mockRunService struct {
	runs []domain.PipelineRun
	err  error
}

func (m *mockRunService) List(_ context.Context, _ int) ([]domain.PipelineRun, error) {
	return m.runs, m.err
}

func (m *mockRunService) Get(_ context.Context, id string) (*domain.PipelineRun, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.runs {
		if m.runs[i].ID == id {
			return &m.runs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func sampleRun() domain.PipelineRun {
	return domain.PipelineRun{
		ID:           "20240501_120000",
		ProjectName:  "Site_black",
		Status:       domain.RunStatusSucceeded,
		Review:       domain.ReviewUnapproved,
		ArtifactPath: "/tmp/runs/20240501_120000/index.html",
		Complexity:   domain.ComplexityLevel{Level: 4},
		Outputs: []domain.StageOutput{
			{Stage: domain.StageGenerate, Output: "<html></html>"},
			{Stage: domain.StageReview, Attempt: 1, Output: "fixed"},
		},
	}
}
