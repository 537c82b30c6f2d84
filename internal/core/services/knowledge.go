package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driving"
	"github.com/Yukio-aki/ai-office/internal/logger"
)

// Ensure KnowledgeService implements the interface.
var _ driving.KnowledgeService = (*KnowledgeService)(nil)

// Relevance weights.
const (
	scoreTextMatch    = 2
	scoreKeywordMatch = 3
)

// defaultKnowledgeTech is searched when a profile names no technology.
const defaultKnowledgeTech = "html"

// KnowledgeService ranks reference snippets from a loaded corpus.
// The index is swapped atomically on Reload; searches never block.
type KnowledgeService struct {
	corpus driven.KnowledgeCorpus
	index  atomic.Pointer[domain.KnowledgeIndex]
}

// NewKnowledgeService creates a knowledge service with an empty index.
// Call Reload to load the corpus. corpus may be nil.
func NewKnowledgeService(corpus driven.KnowledgeCorpus) *KnowledgeService {
	s := &KnowledgeService{corpus: corpus}
	s.index.Store(&domain.KnowledgeIndex{})
	return s
}

// Reload re-reads the corpus and replaces the index.
func (s *KnowledgeService) Reload(ctx context.Context) error {
	if s.corpus == nil {
		return nil
	}
	index, err := s.corpus.Load(ctx)
	if err != nil {
		return fmt.Errorf("load knowledge corpus: %w", err)
	}
	s.index.Store(index)
	logger.Debug("knowledge: %d examples, %d rules", len(index.Examples), len(index.Rules))
	return nil
}

// Watch reloads the index whenever the watcher reports a change.
// Blocks until ctx is cancelled.
func (s *KnowledgeService) Watch(ctx context.Context, watcher driven.CorpusWatcher) error {
	return watcher.Watch(ctx, func() {
		if err := s.Reload(ctx); err != nil {
			logger.Warn("knowledge: reload failed: %v", err)
		}
	})
}

// Search returns up to max items for tech ordered by relevance. An item
// earns 2 points per keyword found in its description or keyword text and
// 3 more when the keyword is one of its own tags. Ties keep corpus order.
func (s *KnowledgeService) Search(tech string, keywords []string, max int) []domain.ScoredItem {
	if max <= 0 {
		return []domain.ScoredItem{}
	}

	index := s.index.Load()
	results := make([]domain.ScoredItem, 0)
	for _, item := range index.Examples {
		if !strings.EqualFold(item.Tech, tech) {
			continue
		}
		if score := relevance(item, keywords); score > 0 {
			results = append(results, domain.ScoredItem{Item: item, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > max {
		results = results[:max]
	}
	return results
}

func relevance(item domain.KnowledgeItem, keywords []string) int {
	tags := make(map[string]struct{}, len(item.Keywords))
	for _, k := range item.Keywords {
		tags[strings.ToLower(k)] = struct{}{}
	}
	text := strings.ToLower(item.Description + " " + strings.Join(item.Keywords, " "))

	score := 0
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(text, kw) {
			score += scoreTextMatch
		}
		if _, ok := tags[kw]; ok {
			score += scoreKeywordMatch
		}
	}
	return score
}

// Rules returns up to max rule snippets in corpus order.
func (s *KnowledgeService) Rules(max int) []string {
	index := s.index.Load()
	rules := make([]string, 0, len(index.Rules))
	for _, r := range index.Rules {
		if len(rules) >= max {
			break
		}
		rules = append(rules, r.Content)
	}
	return rules
}

// ContextFor derives the search inputs from a profile: the first
// technology (or html) and the features, colors, style and type as keywords.
func (s *KnowledgeService) ContextFor(p *domain.RequirementProfile, topK, maxRules int) domain.KnowledgeContext {
	tech := defaultKnowledgeTech
	if len(p.Technologies) > 0 {
		tech = p.Technologies[0]
	}

	keywords := make([]string, 0, len(p.Features)+len(p.Colors)+2)
	keywords = append(keywords, p.Features...)
	keywords = append(keywords, p.Colors...)
	keywords = append(keywords, string(p.Style))
	if p.ProjectType.IsValid() {
		keywords = append(keywords, string(p.ProjectType))
	}

	return domain.KnowledgeContext{
		Items: s.Search(tech, keywords, topK),
		Rules: s.Rules(maxRules),
	}
}
