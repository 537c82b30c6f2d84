package domain

import (
	"strings"
	"time"
)

// Role identifies who wrote a dialog message.
type Role string

// Dialog roles.
const (
	RoleUser   Role = "user"
	RoleSystem Role = "system"
)

// SessionIDLayout formats session identifiers from their creation time.
const SessionIDLayout = "20060102_150405"

// MaxClarificationTurns is the turn count after which a dialog is ready
// regardless of how complete its profile is.
const MaxClarificationTurns = 6

// Message is one entry of the dialog history.
type Message struct {
	Role      Role      `json:"role"`
	Text      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// DialogState is one clarification session. It exclusively owns its
// profile until clarification ends.
type DialogState struct {
	// SessionID is derived from the creation timestamp.
	SessionID string `json:"session_id"`

	// Profile is the requirement profile being clarified.
	Profile *RequirementProfile `json:"requirements"`

	// History holds every message in order.
	History []Message `json:"dialog"`

	// TurnCount is the number of answers recorded.
	TurnCount int `json:"turn_count"`

	// ActiveQuestion is the outstanding question, empty if none.
	ActiveQuestion string `json:"active_question,omitempty"`

	// CreatedAt is when the session started.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the session last changed.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDialogState creates an empty session at the given time.
func NewDialogState(now time.Time) *DialogState {
	return &DialogState{
		SessionID: now.Format(SessionIDLayout),
		Profile:   NewRequirementProfile(),
		History:   []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddMessage appends a message to the history.
func (d *DialogState) AddMessage(role Role, text string) {
	now := time.Now()
	d.History = append(d.History, Message{Role: role, Text: text, Timestamp: now})
	d.UpdatedAt = now
}

// Transcript renders the history as "role: text" lines.
func (d *DialogState) Transcript() string {
	var b strings.Builder
	for _, m := range d.History {
		b.WriteString(string(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// QuestionList is the non-conversational clarification mode: a fixed list
// of questions proposed up front, answered one at a time.
type QuestionList struct {
	Questions []string          `json:"questions"`
	Answers   map[string]string `json:"answers"`
	Current   int               `json:"current"`
}

// NewQuestionList wraps parsed questions.
func NewQuestionList(questions []string) *QuestionList {
	return &QuestionList{Questions: questions, Answers: make(map[string]string)}
}

// Next returns the active question.
func (q *QuestionList) Next() (string, bool) {
	if q.Current < len(q.Questions) {
		return q.Questions[q.Current], true
	}
	return "", false
}

// Answer records an answer for the active question and advances.
func (q *QuestionList) Answer(answer string) {
	if q.Current >= len(q.Questions) {
		return
	}
	q.Answers[q.Questions[q.Current]] = answer
	q.Current++
}

// Finished reports whether every question has an answer.
func (q *QuestionList) Finished() bool {
	return q.Current >= len(q.Questions)
}

// AnswersText renders answered questions in question order.
func (q *QuestionList) AnswersText() string {
	var b strings.Builder
	b.WriteString("=== CLARIFICATIONS ===\n")
	for _, question := range q.Questions {
		answer, ok := q.Answers[question]
		if !ok {
			continue
		}
		b.WriteString("Q: " + question + "\n")
		b.WriteString("A: " + answer + "\n")
	}
	return b.String()
}
