package driven

import "context"

// Generator is the opaque text generation capability. Each call is
// self-contained: upstream stage outputs are threaded through the prompt.
type Generator interface {
	// Run executes one generation for a role prompt (one of the Prompt*
	// names) with the given task material and optional extra context.
	Run(ctx context.Context, role, prompt, context string) (string, error)
}

// Reviewer checks a candidate against requirements. Its response either
// contains the approval token or is a replacement candidate.
type Reviewer interface {
	Review(ctx context.Context, candidate, requirements string) (string, error)
}

// Extractor turns one free-text message into text containing a JSON
// requirement object.
type Extractor interface {
	Extract(ctx context.Context, message, contextJSON string) (string, error)
}
