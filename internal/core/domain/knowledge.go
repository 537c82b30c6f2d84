package domain

// KnowledgeItem is one reference snippet from the corpus.
type KnowledgeItem struct {
	ID          string   `json:"id" yaml:"id"`
	Tech        string   `json:"tech" yaml:"tech"`
	Description string   `json:"description" yaml:"description"`
	Keywords    []string `json:"keywords" yaml:"keywords"`
	Path        string   `json:"path" yaml:"path"`

	// Content is loaded from Path; it is not part of the index file.
	Content string `json:"-" yaml:"-"`
}

// KnowledgeRule is a guardrail snippet used verbatim in prompts.
type KnowledgeRule struct {
	Content string `json:"content" yaml:"content"`
}

// KnowledgeIndex is the loaded corpus. Read-only once loaded.
type KnowledgeIndex struct {
	Examples []KnowledgeItem `json:"examples" yaml:"examples"`
	Rules    []KnowledgeRule `json:"rules" yaml:"rules"`
}

// ScoredItem is a search hit with its relevance score.
type ScoredItem struct {
	Item  KnowledgeItem
	Score int
}

// KnowledgeContext is the retrieved material handed to the generate stage.
type KnowledgeContext struct {
	Items []ScoredItem
	Rules []string
}
