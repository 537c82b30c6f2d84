package chat

import "errors"

// Error definitions for the chat view.
var (
	// ErrNoClarificationService indicates that no clarification service was provided.
	ErrNoClarificationService = errors.New("clarification service is required")

	// ErrNoPipelineService indicates that the pipeline cannot be started from the chat.
	ErrNoPipelineService = errors.New("pipeline service is not available")
)
