package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driving"
	"github.com/Yukio-aki/ai-office/internal/logger"
	"github.com/Yukio-aki/ai-office/internal/salvage"
)

// Ensure ClarificationService implements the interface.
var _ driving.ClarificationService = (*ClarificationService)(nil)

// Question bank, keyed by the category that is missing.
const (
	questionType = "What should this be?\n  - a website or single page\n  - an animation or effect\n  " +
		"- something else (parser, bot, script)"
	questionColors = "Which colors do you prefer?\n  - dark or light\n  - specific shades\n  - gradients"
	questionAnimation = "How should things move?\n  - slow and smooth\n  - medium\n  - fast and dynamic"
	questionEffects = "Any special effects?\n  - glow\n  - particles\n  - transitions\n  - black and white mode"
	questionExamples = "Do you have examples or references?\n  Paste links or describe them in words."
)

// examplesTurnLimit stops asking for examples after this many answers.
const examplesTurnLimit = 4

// minQuestionLength drops proposed questions shorter than this many runes.
const minQuestionLength = 10

// ClarificationService drives the requirement dialog for one session at a time.
// A DialogState is single-writer: callers must not share one across goroutines.
type ClarificationService struct {
	extraction driving.ExtractionService
	sessions   driven.SessionStore
	generator  driven.Generator
	now        func() time.Time

	// reserved holds session IDs handed out but not saved yet.
	idMu     sync.Mutex
	reserved map[string]struct{}
}

// NewClarificationService creates a clarification service.
// generator is optional and only used by ProposeQuestions.
func NewClarificationService(
	extraction driving.ExtractionService,
	sessions driven.SessionStore,
	generator driven.Generator,
) *ClarificationService {
	return &ClarificationService{
		extraction: extraction,
		sessions:   sessions,
		generator:  generator,
		now:        time.Now,
		reserved:   make(map[string]struct{}),
	}
}

// Start opens a session, extracts what the task already says and persists it.
func (s *ClarificationService) Start(ctx context.Context, task string) (*domain.DialogState, string, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return nil, "", fmt.Errorf("%w: empty task", domain.ErrInvalidInput)
	}

	state := domain.NewDialogState(s.now())
	state.SessionID = s.reserveSessionID(ctx, state.SessionID)
	defer s.releaseSessionID(state.SessionID)

	if err := state.Profile.SetInitialTask(task); err != nil {
		return nil, "", err
	}
	state.AddMessage(domain.RoleUser, task)

	state.Profile, _ = s.extraction.Extract(ctx, task, state.Profile)

	var b strings.Builder
	fmt.Fprintf(&b, "I will help turn this idea into a working project.\n\nYou want: %q\n", task)
	if question, ok := s.NextQuestion(state); ok && !s.IsReady(state) {
		state.ActiveQuestion = question
		b.WriteString("\nA few questions first.\n\n")
		b.WriteString(question)
	}
	welcome := b.String()
	state.AddMessage(domain.RoleSystem, welcome)

	if err := s.save(ctx, state); err != nil {
		return state, welcome, err
	}
	logger.Info("clarification: started session %s", state.SessionID)
	return state, welcome, nil
}

// Respond records an answer, merges what it says and decides what comes next.
// The updated profile is persisted before returning.
func (s *ClarificationService) Respond(ctx context.Context, state *domain.DialogState, answer string) (driving.Reply, error) {
	if state == nil {
		return driving.Reply{}, fmt.Errorf("%w: nil dialog state", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return driving.Reply{}, fmt.Errorf("%w: %w", domain.ErrStopped, err)
	}

	s.RecordAnswer(state, answer)
	state.Profile, _ = s.extraction.Extract(ctx, answer, state.Profile)

	var reply driving.Reply
	question, hasQuestion := s.NextQuestion(state)
	if s.IsReady(state) || !hasQuestion {
		reply = driving.Reply{
			Ready:   true,
			Stalled: s.Stalled(state),
			Brief:   s.Brief(state.Profile),
		}
		state.ActiveQuestion = ""
		state.AddMessage(domain.RoleSystem, "Enough information collected.\n\n"+reply.Brief)
		if reply.Stalled {
			logger.Warn("clarification: %v after %d turns", domain.ErrClarificationStall, state.TurnCount)
		}
	} else {
		reply = driving.Reply{Question: question}
		state.ActiveQuestion = question
		state.AddMessage(domain.RoleSystem, question)
	}

	if err := s.save(ctx, state); err != nil {
		return reply, err
	}
	return reply, nil
}

// NextQuestion returns the question for the first unmet category, in fixed
// priority order: type, colors, animation, effects, examples.
func (s *ClarificationService) NextQuestion(state *domain.DialogState) (string, bool) {
	p := state.Profile
	switch {
	case !p.ProjectType.IsValid():
		return questionType, true
	case len(p.Colors) == 0:
		return questionColors, true
	case !p.AnimationSpeedSet:
		return questionAnimation, true
	case p.Style == domain.DefaultStyle && len(p.Features) < 2:
		return questionEffects, true
	case len(p.Examples) == 0 && state.TurnCount < examplesTurnLimit:
		return questionExamples, true
	default:
		return "", false
	}
}

// RecordAnswer appends the answer to the history and advances the turn count.
// It does not touch the profile.
func (s *ClarificationService) RecordAnswer(state *domain.DialogState, answer string) {
	state.AddMessage(domain.RoleUser, answer)
	state.TurnCount++
}

// IsReady reports whether the profile is complete enough, or the turn
// ceiling has been passed.
func (s *ClarificationService) IsReady(state *domain.DialogState) bool {
	return complete(state.Profile) || state.TurnCount > domain.MaxClarificationTurns
}

// Stalled reports that the dialog is ready only because of the turn ceiling.
func (s *ClarificationService) Stalled(state *domain.DialogState) bool {
	return !complete(state.Profile) && state.TurnCount > domain.MaxClarificationTurns
}

func complete(p *domain.RequirementProfile) bool {
	if !p.ProjectType.IsValid() || len(p.Colors) == 0 || p.InitialTask == "" {
		return false
	}
	if p.ProjectType == domain.ProjectTypeWebsite && len(p.Features) < 2 {
		return false
	}
	return true
}

// Resume reloads a saved session by ID.
func (s *ClarificationService) Resume(ctx context.Context, sessionID string) (*domain.DialogState, error) {
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	normaliseState(state)
	return state, nil
}

// Latest reloads the most recently updated session.
func (s *ClarificationService) Latest(ctx context.Context) (*domain.DialogState, error) {
	state, err := s.sessions.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("load latest session: %w", err)
	}
	normaliseState(state)
	return state, nil
}

func normaliseState(state *domain.DialogState) {
	if state.Profile == nil {
		state.Profile = domain.NewRequirementProfile()
	}
	state.Profile.Normalise()
	if state.History == nil {
		state.History = []domain.Message{}
	}
}

// Summary describes the session state in a few lines.
func (s *ClarificationService) Summary(state *domain.DialogState) string {
	p := state.Profile
	missing := p.MissingFields()
	if len(missing) == 0 {
		missing = []string{"nothing"}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session:    %s\n", state.SessionID)
	fmt.Fprintf(&b, "Messages:   %d\n", len(state.History))
	fmt.Fprintf(&b, "Turns:      %d\n", state.TurnCount)
	fmt.Fprintf(&b, "Type:       %s\n", p.ProjectType)
	fmt.Fprintf(&b, "Confidence: %.0f%%\n", p.Confidence())
	fmt.Fprintf(&b, "Ready:      %t\n", s.IsReady(state))
	fmt.Fprintf(&b, "Missing:    %s\n", strings.Join(missing, ", "))
	return b.String()
}

// Brief renders the final technical brief. It is the requirements text
// handed to every downstream stage.
func (s *ClarificationService) Brief(p *domain.RequirementProfile) string {
	return RenderBrief(p)
}

// RenderBrief renders a profile as a Markdown technical brief.
func RenderBrief(p *domain.RequirementProfile) string {
	var b strings.Builder

	b.WriteString("# Technical brief\n\n")
	b.WriteString("## Task\n")
	b.WriteString(p.InitialTask + "\n\n")

	b.WriteString("## Project type\n")
	fmt.Fprintf(&b, "**%s** - %s\n\n", p.ProjectType, p.ProjectType.Description())

	b.WriteString("## Colors\n")
	if len(p.Colors) > 0 {
		b.WriteString(strings.Join(p.Colors, ", ") + "\n\n")
	} else {
		b.WriteString("dark tones (default)\n\n")
	}

	b.WriteString("## Animation\n")
	fmt.Fprintf(&b, "Speed: **%s**\nStyle: **%s**\nMood: **%s**\n\n", p.AnimationSpeed, p.Style, p.Mood)

	writeList(&b, "Features", p.Features)
	writeList(&b, "Technologies", p.Technologies)
	writeList(&b, "Forbidden", p.Forbidden)
	writeList(&b, "References", append(append([]string{}, p.Examples...), p.References...))

	b.WriteString("## Requirements\n")
	b.WriteString("1. A single self-contained file that opens in a browser.\n")
	fmt.Fprintf(&b, "2. Animation: %s speed, %s style.\n", p.AnimationSpeed, p.Style)
	if len(p.Features) > 0 {
		fmt.Fprintf(&b, "3. Effects: %s.\n", strings.Join(p.Features, ", "))
	} else {
		b.WriteString("3. Effects: basic.\n")
	}
	if len(p.Colors) > 0 {
		fmt.Fprintf(&b, "4. Colors: %s.\n", strings.Join(p.Colors, ", "))
	} else {
		b.WriteString("4. Colors: dark theme.\n")
	}
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("## " + title + "\n")
	for _, item := range items {
		b.WriteString("- " + item + "\n")
	}
	b.WriteString("\n")
}

// ProposeQuestions asks the Generator for clarifying questions and keeps the
// "- " bullet lines that are long enough to be real questions.
func (s *ClarificationService) ProposeQuestions(ctx context.Context, task string) (*domain.QuestionList, error) {
	if s.generator == nil {
		return nil, domain.ErrGeneratorUnavailable
	}
	raw, err := s.generator.Run(ctx, driven.PromptClarifier, task, "")
	if err != nil {
		return nil, err
	}
	questions := salvage.BulletLines(raw, "- ", minQuestionLength)
	logger.Debug("clarification: %d proposed questions", len(questions))
	return domain.NewQuestionList(questions), nil
}

// reserveSessionID returns base, or base with the first free numeric
// suffix when a session started within the same second already has it.
func (s *ClarificationService) reserveSessionID(ctx context.Context, base string) string {
	s.idMu.Lock()
	defer s.idMu.Unlock()

	id := base
	for i := 2; ; i++ {
		if !s.sessionIDTaken(ctx, id) {
			s.reserved[id] = struct{}{}
			return id
		}
		id = domain.SuffixedID(base, i)
	}
}

func (s *ClarificationService) sessionIDTaken(ctx context.Context, id string) bool {
	if _, ok := s.reserved[id]; ok {
		return true
	}
	if s.sessions == nil {
		return false
	}
	_, err := s.sessions.Load(ctx, id)
	return err == nil
}

func (s *ClarificationService) releaseSessionID(id string) {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	delete(s.reserved, id)
}

func (s *ClarificationService) save(ctx context.Context, state *domain.DialogState) error {
	if s.sessions == nil {
		return nil
	}
	if err := s.sessions.Save(ctx, state); err != nil {
		if errors.Is(err, domain.ErrPersistence) {
			return err
		}
		return fmt.Errorf("%w: save session %s: %w", domain.ErrPersistence, state.SessionID, err)
	}
	return nil
}
