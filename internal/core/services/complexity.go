package services

import (
	"strings"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driving"
)

// Ensure ComplexityAnalyzer implements the interface.
var _ driving.ComplexityAnalyzer = (*ComplexityAnalyzer)(nil)

// complexIndicators are substrings that each add one point in text mode.
// Matching is case-insensitive and covers Russian and English phrasing.
var complexIndicators = []string{
	"анимац", "animation", "react", "vue", "angular",
	"баз дан", "database", "api", "сервер", "server",
	"регистрац", "login", "auth", "пользовател", "user",
	"нескольк", "multiple", "страниц", "pages",
}

var (
	stagesGenerate = []domain.Stage{domain.StageGenerate}
	stagesPlan     = []domain.Stage{domain.StagePlan, domain.StageGenerate}
	stagesNoReview = []domain.Stage{domain.StageTranslate, domain.StagePlan, domain.StageGenerate}
	stagesFull     = []domain.Stage{domain.StageTranslate, domain.StagePlan, domain.StageGenerate, domain.StageReview}
)

// ComplexityAnalyzer scores tasks and profiles into complexity levels.
// It holds no state; both modes are pure functions.
type ComplexityAnalyzer struct{}

// NewComplexityAnalyzer creates a complexity analyzer.
func NewComplexityAnalyzer() *ComplexityAnalyzer {
	return &ComplexityAnalyzer{}
}

// AnalyzeText scores a raw task: one point per indicator found, one more
// past 20 words and two more past 50.
func (a *ComplexityAnalyzer) AnalyzeText(task string) domain.ComplexityLevel {
	lower := strings.ToLower(task)
	score := 0
	for _, word := range complexIndicators {
		if strings.Contains(lower, word) {
			score++
		}
	}

	words := len(strings.Fields(task))
	if words > 20 {
		score++
	}
	if words > 50 {
		score += 2
	}
	return LevelForTextScore(score)
}

// AnalyzeProfile scores a profile by how much it asks for.
func (a *ComplexityAnalyzer) AnalyzeProfile(p *domain.RequirementProfile) domain.ComplexityLevel {
	if p == nil {
		return LevelForProfileScore(0)
	}
	score := 2*len(p.Technologies) + len(p.Features) + len(p.Forbidden)
	if p.Style == domain.StyleAbstract || p.Style == domain.StyleOrganic {
		score += 3
	}
	if p.AnimationSpeedSet {
		score += 2
	}
	return LevelForProfileScore(score)
}

// LevelForTextScore maps a text-mode score to one of four levels.
func LevelForTextScore(score int) domain.ComplexityLevel {
	var level domain.ComplexityLevel
	switch {
	case score <= 1:
		level = newLevel(1, "Trivial", "A single generation is enough", stagesGenerate, 1, 0.7)
	case score <= 3:
		level = newLevel(2, "Simple", "Plan, then generate", stagesPlan, 2, 0.8)
	case score <= 5:
		level = newLevel(3, "Moderate", "Translate, plan, then generate", stagesNoReview, 3, 0.85)
	default:
		level = newLevel(4, "Complex", "Full chain with review", stagesFull, 3, 0.9)
	}
	level.Score = score
	return level
}

// LevelForProfileScore maps a profile-mode score to one of five levels.
func LevelForProfileScore(score int) domain.ComplexityLevel {
	var level domain.ComplexityLevel
	switch {
	case score <= 3:
		level = newLevel(1, "Trivial", "A single generation is enough", stagesGenerate, 1, 0.6)
	case score <= 6:
		level = newLevel(2, "Simple", "Plan, then generate", stagesPlan, 2, 0.7)
	case score <= 10:
		level = newLevel(3, "Moderate", "Translate, plan, then generate", stagesNoReview, 3, 0.8)
	case score <= 15:
		level = newLevel(4, "Complex", "Full chain with review", stagesFull, 3, 0.85)
	default:
		level = newLevel(5, "Expert", "Full chain with an extended review budget", stagesFull, 5, 0.9)
	}
	level.Score = score
	return level
}

func newLevel(n int, name, desc string, stages []domain.Stage, retries int, minConf float64) domain.ComplexityLevel {
	return domain.ComplexityLevel{
		Level:         n,
		Name:          name,
		Description:   desc,
		Stages:        append([]domain.Stage(nil), stages...),
		MaxRetries:    retries,
		MinConfidence: minConf,
	}
}
