package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driving"
)

// AnalyzeInput is the input schema for the analyze_complexity tool.
type AnalyzeInput struct {
	Task string `json:"task" jsonschema:"the free-text task to score"`
}

// AnalyzeOutput is the output schema for the analyze_complexity tool.
type AnalyzeOutput struct {
	Level         int      `json:"level"`
	Name          string   `json:"name"`
	Score         int      `json:"score"`
	Stages        []string `json:"stages"`
	MaxRetries    int      `json:"max_retries"`
	MinConfidence float64  `json:"min_confidence"`
}

// KnowledgeInput is the input schema for the search_knowledge tool.
type KnowledgeInput struct {
	Tech     string   `json:"tech" jsonschema:"technology tag to filter by, e.g. html"`
	Keywords []string `json:"keywords,omitempty" jsonschema:"keywords to rank snippets by"`
	Limit    int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// KnowledgeOutput is the output schema for the search_knowledge tool.
type KnowledgeOutput struct {
	Results []KnowledgeResultOutput `json:"results"`
	Count   int                     `json:"count"`
}

// KnowledgeResultOutput represents a single ranked snippet.
type KnowledgeResultOutput struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Path        string `json:"path"`
	Score       int    `json:"score"`
	Content     string `json:"content,omitempty"`
}

// PipelineInput is the input schema for the run_pipeline tool.
type PipelineInput struct {
	Task     string `json:"task" jsonschema:"the task to build, used without clarification"`
	TextMode bool   `json:"text_mode,omitempty" jsonschema:"score complexity from the task text instead of the extracted profile"`
}

// PipelineOutput is the output schema for the run_pipeline tool.
type PipelineOutput struct {
	RunID        string   `json:"run_id"`
	Status       string   `json:"status"`
	Review       string   `json:"review"`
	Level        int      `json:"level"`
	Stages       []string `json:"stages"`
	ArtifactPath string   `json:"artifact_path,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_complexity",
		Description: "Score a task and list the pipeline stages it would run",
	}, s.handleAnalyze)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_knowledge",
		Description: "Rank reference snippets for a technology and keywords",
	}, s.handleSearchKnowledge)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "run_pipeline",
		Description: "Generate an artifact for a task and return the run record",
	}, s.handleRunPipeline)
}

func (s *Server) handleAnalyze(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeInput,
) (*mcp.CallToolResult, AnalyzeOutput, error) {
	level := s.ports.Complexity.AnalyzeText(input.Task)
	return nil, AnalyzeOutput{
		Level:         level.Level,
		Name:          level.Name,
		Score:         level.Score,
		Stages:        stageNames(level.Stages),
		MaxRetries:    level.MaxRetries,
		MinConfidence: level.MinConfidence,
	}, nil
}

func (s *Server) handleSearchKnowledge(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input KnowledgeInput,
) (*mcp.CallToolResult, KnowledgeOutput, error) {
	if s.ports.Knowledge == nil {
		return nil, KnowledgeOutput{}, ErrKnowledgeUnavailable
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 5
	}

	results := s.ports.Knowledge.Search(input.Tech, input.Keywords, limit)
	output := KnowledgeOutput{
		Results: make([]KnowledgeResultOutput, len(results)),
		Count:   len(results),
	}
	for i, r := range results {
		output.Results[i] = KnowledgeResultOutput{
			ID:          r.Item.ID,
			Description: r.Item.Description,
			Path:        r.Item.Path,
			Score:       r.Score,
			Content:     r.Item.Content,
		}
	}
	return nil, output, nil
}

func (s *Server) handleRunPipeline(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PipelineInput,
) (*mcp.CallToolResult, PipelineOutput, error) {
	if s.ports.Pipeline == nil {
		return nil, PipelineOutput{}, ErrPipelineUnavailable
	}

	run, err := s.ports.Pipeline.Execute(ctx, input.Task, driving.ExecuteOptions{TextMode: input.TextMode})
	if run == nil {
		if err == nil {
			err = fmt.Errorf("%w: no run recorded", domain.ErrPersistence)
		}
		return nil, PipelineOutput{}, fmt.Errorf("running pipeline: %w", err)
	}

	// A failed run still has a record worth returning.
	output := runOutput(run)
	if err != nil && output.Error == "" {
		output.Error = err.Error()
	}
	return nil, output, nil
}

func runOutput(run *domain.PipelineRun) PipelineOutput {
	labels := make([]string, len(run.Outputs))
	for i, out := range run.Outputs {
		labels[i] = out.Label()
	}
	return PipelineOutput{
		RunID:        run.ID,
		Status:       string(run.Status),
		Review:       string(run.Review),
		Level:        run.Complexity.Level,
		Stages:       labels,
		ArtifactPath: run.ArtifactPath,
		Error:        run.Error,
	}
}

func stageNames(stages []domain.Stage) []string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.String()
	}
	return names
}
