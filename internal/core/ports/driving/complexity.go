package driving

import "github.com/Yukio-aki/ai-office/internal/core/domain"

// ComplexityAnalyzer classifies work into a complexity level.
// Both modes are pure functions of their input.
type ComplexityAnalyzer interface {
	// AnalyzeText scores a raw task string by keywords and length.
	AnalyzeText(task string) domain.ComplexityLevel

	// AnalyzeProfile scores a requirement profile by its contents.
	AnalyzeProfile(profile *domain.RequirementProfile) domain.ComplexityLevel
}
