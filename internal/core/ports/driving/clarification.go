package driving

import (
	"context"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
)

// Reply is the outcome of one clarification turn.
type Reply struct {
	// Ready is true when clarification is over.
	Ready bool

	// Stalled is true when readiness came from the turn ceiling.
	Stalled bool

	// Question is the next question when not ready.
	Question string

	// Brief is the final technical brief when ready.
	Brief string
}

// ExtractionService turns free text into requirement profile updates.
type ExtractionService interface {
	// Extract merges what the message says into a copy of profile.
	// It never fails: unusable Extractor output yields a null extraction.
	Extract(ctx context.Context, message string, profile *domain.RequirementProfile) (*domain.RequirementProfile, domain.Extraction)
}

// ClarificationService drives the multi-turn requirement dialog.
type ClarificationService interface {
	// Start opens a session for a task and returns the welcome message.
	Start(ctx context.Context, task string) (*domain.DialogState, string, error)

	// Respond records an answer, updates the profile and decides what comes next.
	Respond(ctx context.Context, state *domain.DialogState, answer string) (Reply, error)

	// NextQuestion returns the highest priority open question.
	NextQuestion(state *domain.DialogState) (string, bool)

	// RecordAnswer appends an answer and advances the turn count.
	RecordAnswer(state *domain.DialogState, answer string)

	// IsReady reports whether clarification can end.
	IsReady(state *domain.DialogState) bool

	// Stalled reports that readiness came only from the turn ceiling.
	Stalled(state *domain.DialogState) bool

	// Resume reloads a saved session.
	Resume(ctx context.Context, sessionID string) (*domain.DialogState, error)

	// Latest reloads the most recent saved session.
	Latest(ctx context.Context) (*domain.DialogState, error)

	// Summary describes the current profile for humans.
	Summary(state *domain.DialogState) string

	// Brief renders the final technical brief for a profile.
	Brief(profile *domain.RequirementProfile) string

	// ProposeQuestions asks the Generator for a question list up front.
	ProposeQuestions(ctx context.Context, task string) (*domain.QuestionList, error)
}
