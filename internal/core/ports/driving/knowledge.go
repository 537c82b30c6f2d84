package driving

import (
	"context"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
)

// KnowledgeService ranks reference snippets for prompt augmentation.
type KnowledgeService interface {
	// Search returns up to max items for tech, ranked by keyword relevance.
	Search(tech string, keywords []string, max int) []domain.ScoredItem

	// Rules returns up to max rule snippets in corpus order.
	Rules(max int) []string

	// ContextFor derives tech and keywords from a profile and retrieves both.
	ContextFor(profile *domain.RequirementProfile, topK, maxRules int) domain.KnowledgeContext

	// Reload re-reads the corpus.
	Reload(ctx context.Context) error
}
