package domain

// Stage is one step of the generation pipeline.
type Stage string

// Pipeline stages, in canonical order.
const (
	StageTranslate Stage = "translate"
	StagePlan      Stage = "plan"
	StageGenerate  Stage = "generate"
	StageReview    Stage = "review"
)

// IsValid returns true if the stage is recognised.
func (s Stage) IsValid() bool {
	switch s {
	case StageTranslate, StagePlan, StageGenerate, StageReview:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s Stage) String() string {
	return string(s)
}

// ComplexityLevel is an immutable classification that fixes which stages
// run and how many review iterations are allowed.
type ComplexityLevel struct {
	// Level is 1 (trivial) to 5 (expert).
	Level int `json:"level"`

	// Name is a short label such as "Simple".
	Name string `json:"name"`

	// Description explains what the level implies.
	Description string `json:"description"`

	// Stages is the ordered stage list.
	Stages []Stage `json:"stages"`

	// MaxRetries bounds the review loop.
	MaxRetries int `json:"max_retries"`

	// MinConfidence is an informational quality threshold, not a gate.
	MinConfidence float64 `json:"min_confidence"`

	// Score is the raw score that selected the level.
	Score int `json:"score"`
}

// HasStage reports whether the stage list includes s.
func (c ComplexityLevel) HasStage(s Stage) bool {
	for _, st := range c.Stages {
		if st == s {
			return true
		}
	}
	return false
}
