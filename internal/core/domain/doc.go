// Package domain defines the core business entities for ai-office.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RequirementProfile: The accumulating, mergeable user requirements
//   - DialogState: One clarification session bound to a profile
//   - ComplexityLevel: The stage list and retry budget for a run
//   - KnowledgeItem: A reference snippet used to augment prompts
//   - PipelineRun: One end-to-end execution record
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
