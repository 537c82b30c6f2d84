package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names, one per pipeline role.
// Each template is a system prompt with no format placeholders; the role
// adapters append the task material after it.
const (
	// PromptTranslator turns a brief into terse "- key: value" requirement lines.
	PromptTranslator = "translator"

	// PromptPlanner produces a JSON plan with tech_stack, file_structure and steps.
	PromptPlanner = "planner"

	// PromptDeveloper produces the artifact itself.
	PromptDeveloper = "developer"

	// PromptReviewer either approves a candidate or returns a corrected one.
	PromptReviewer = "reviewer"

	// PromptExtractor turns one user message into a JSON requirement object.
	PromptExtractor = "extractor"

	// PromptClarifier proposes clarifying questions as "- " bullet lines.
	PromptClarifier = "clarifier"
)

// AllPrompts lists every well-known prompt name.
func AllPrompts() []string {
	return []string{
		PromptTranslator,
		PromptPlanner,
		PromptDeveloper,
		PromptReviewer,
		PromptExtractor,
		PromptClarifier,
	}
}
