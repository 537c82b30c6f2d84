package mcp

import (
	"github.com/Yukio-aki/ai-office/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Complexity scores tasks. Required.
	Complexity driving.ComplexityAnalyzer

	// Knowledge ranks reference snippets.
	Knowledge driving.KnowledgeService

	// Pipeline runs the generation pipeline.
	Pipeline driving.PipelineService

	// Runs lists recorded runs.
	Runs driving.RunService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Complexity == nil {
		return ErrMissingComplexityAnalyzer
	}
	return nil
}
