// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Generator, Reviewer, Extractor: The text capabilities the pipeline drives
//   - ArtifactStore: Run directories and the projects collection
//   - RunStore: Pipeline run persistence
//   - SessionStore: Clarification session persistence
//   - ConfigStore: Application configuration
//   - PromptStore: Role prompt templates
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - KnowledgeCorpus: Reference snippets. Without it, generation has no examples.
//   - Archiver, Janitor: Housekeeping. Without them, the scheduler has nothing to run.
//   - SchedulerStore: Housekeeping task state.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
