package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity with the same identity exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrWriteOnce indicates an attempt to change a write-once field.
	ErrWriteOnce = errors.New("field is write-once")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// Pipeline Errors.

	// ErrParseFailure indicates an Extractor or Planner returned text that
	// could not be decoded. Callers recover locally with a default value.
	ErrParseFailure = errors.New("parse failure")

	// ErrApprovalExhausted indicates the review loop ran out of retries
	// without approval. It is recorded on the run, never returned.
	ErrApprovalExhausted = errors.New("approval exhausted")

	// ErrGeneratorUnavailable indicates the text generation capability
	// could not be reached. Fatal to the current run.
	ErrGeneratorUnavailable = errors.New("generator unavailable")

	// ErrPersistence indicates an artifact, trace or profile could not be
	// written. Fatal to the current run.
	ErrPersistence = errors.New("persistence failure")

	// ErrClarificationStall indicates the dialog hit its turn ceiling.
	// Clarification ends and the best-effort profile is used.
	ErrClarificationStall = errors.New("clarification stalled")

	// ErrStopped indicates the caller requested the run to stop.
	ErrStopped = errors.New("run stopped")
)
