// Package tui provides an interactive terminal user interface for aioffice.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/Yukio-aki/ai-office/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Clarification runs the requirement dialog. Required.
	Clarification driving.ClarificationService

	// Pipeline turns a brief into an artifact. Without it the chat ends at the brief.
	Pipeline driving.PipelineService

	// Runs lists recorded pipeline runs.
	Runs driving.RunService

	// Settings manages application settings.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	clarification driving.ClarificationService,
	pipeline driving.PipelineService,
	runs driving.RunService,
	settings driving.SettingsService,
) *Ports {
	return &Ports{
		Clarification: clarification,
		Pipeline:      pipeline,
		Runs:          runs,
		Settings:      settings,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Clarification == nil {
		return ErrMissingClarificationService
	}
	return nil
}
