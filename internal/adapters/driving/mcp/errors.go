// Package mcp provides an MCP (Model Context Protocol) server adapter for aioffice.
// It lets AI assistants score tasks, query the reference corpus and run the pipeline.
package mcp

import "errors"

// ErrMissingComplexityAnalyzer is returned when the complexity analyzer is not provided.
var ErrMissingComplexityAnalyzer = errors.New("mcp: complexity analyzer is required")

// ErrPipelineUnavailable is returned by run_pipeline when no pipeline is wired.
var ErrPipelineUnavailable = errors.New("mcp: pipeline service is not available")

// ErrKnowledgeUnavailable is returned by search_knowledge when no corpus is wired.
var ErrKnowledgeUnavailable = errors.New("mcp: knowledge service is not available")
