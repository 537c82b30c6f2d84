package tui

import "errors"

// ErrMissingClarificationService is returned when the clarification service is not provided.
var ErrMissingClarificationService = errors.New("tui: clarification service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
