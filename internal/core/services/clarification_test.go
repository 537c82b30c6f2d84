package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yukio-aki/ai-office/internal/adapters/driven/storage/memory"
	"github.com/Yukio-aki/ai-office/internal/core/domain"
)

func newTestClarification(extractor *fakeExtractor, gen *fakeGenerator) (*ClarificationService, *memory.SessionStore) {
	sessions := memory.NewSessionStore()
	svc := NewClarificationService(NewExtractionService(extractor), sessions, gen)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC) }
	return svc, sessions
}

func TestClarification_Start(t *testing.T) {
	svc, sessions := newTestClarification(&fakeExtractor{fallback: "{}"}, nil)

	state, welcome, err := svc.Start(context.Background(), "  make me something pretty  ")
	require.NoError(t, err)

	assert.Equal(t, "20240501_103000", state.SessionID)
	assert.Equal(t, "make me something pretty", state.Profile.InitialTask)
	assert.Contains(t, welcome, "make me something pretty")
	assert.Contains(t, welcome, questionType)
	assert.Equal(t, questionType, state.ActiveQuestion)
	assert.Zero(t, state.TurnCount)
	require.Len(t, state.History, 2)
	assert.Equal(t, domain.RoleUser, state.History[0].Role)

	saved, err := sessions.Load(context.Background(), state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, state.Profile.InitialTask, saved.Profile.InitialTask)
}

func TestClarification_Start_EmptyTask(t *testing.T) {
	svc, _ := newTestClarification(&fakeExtractor{}, nil)

	_, _, err := svc.Start(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClarification_NextQuestion_PriorityOrder(t *testing.T) {
	svc, _ := newTestClarification(&fakeExtractor{}, nil)
	state := domain.NewDialogState(time.Now())

	q, ok := svc.NextQuestion(state)
	require.True(t, ok)
	assert.Equal(t, questionType, q)

	state.Profile.ProjectType = domain.ProjectTypeAnimation
	q, _ = svc.NextQuestion(state)
	assert.Equal(t, questionColors, q)

	state.Profile.Colors = []string{"purple"}
	q, _ = svc.NextQuestion(state)
	assert.Equal(t, questionAnimation, q)

	state.Profile.AnimationSpeedSet = true
	q, _ = svc.NextQuestion(state)
	assert.Equal(t, questionEffects, q)

	state.Profile.Features = []string{"glow", "particles"}
	q, _ = svc.NextQuestion(state)
	assert.Equal(t, questionExamples, q)

	state.TurnCount = examplesTurnLimit
	_, ok = svc.NextQuestion(state)
	assert.False(t, ok)
}

func TestClarification_NextQuestion_NonDefaultStyleSkipsEffects(t *testing.T) {
	svc, _ := newTestClarification(&fakeExtractor{}, nil)
	state := domain.NewDialogState(time.Now())
	state.Profile.ProjectType = domain.ProjectTypeAnimation
	state.Profile.Colors = []string{"purple"}
	state.Profile.AnimationSpeedSet = true
	state.Profile.Style = domain.StyleMinimal

	q, ok := svc.NextQuestion(state)
	require.True(t, ok)
	assert.Equal(t, questionExamples, q)
}

func TestClarification_Respond_ReadyWhenComplete(t *testing.T) {
	extractor := &fakeExtractor{
		fallback: "{}",
		outputs: map[string]string{
			"a website in black and gold with parallax and a sticky menu": `{"project_type":"website",` +
				`"colors":["black","gold"],"features":["parallax","sticky menu"]}`,
		},
	}
	svc, sessions := newTestClarification(extractor, nil)

	state, _, err := svc.Start(context.Background(), "landing page")
	require.NoError(t, err)
	assert.False(t, svc.IsReady(state))

	reply, err := svc.Respond(context.Background(), state, "a website in black and gold with parallax and a sticky menu")
	require.NoError(t, err)

	assert.True(t, reply.Ready)
	assert.False(t, reply.Stalled)
	assert.Contains(t, reply.Brief, "landing page")
	assert.Contains(t, reply.Brief, "black, gold")
	assert.Empty(t, state.ActiveQuestion)
	assert.Equal(t, 1, state.TurnCount)

	saved, err := sessions.Load(context.Background(), state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectTypeWebsite, saved.Profile.ProjectType)
}

func TestClarification_WebsiteNeedsTwoFeatures(t *testing.T) {
	svc, _ := newTestClarification(&fakeExtractor{}, nil)
	state := domain.NewDialogState(time.Now())
	require.NoError(t, state.Profile.SetInitialTask("site"))
	state.Profile.ProjectType = domain.ProjectTypeWebsite
	state.Profile.Colors = []string{"red"}
	state.Profile.Features = []string{"glow"}

	assert.False(t, svc.IsReady(state))

	state.Profile.Features = append(state.Profile.Features, "menu")
	assert.True(t, svc.IsReady(state))
}

func TestClarification_TerminatesWithinSevenAnswers(t *testing.T) {
	// The extractor never learns anything, so only the turn ceiling ends the dialog.
	svc, _ := newTestClarification(&fakeExtractor{fallback: "not json"}, nil)

	state, _, err := svc.Start(context.Background(), "something")
	require.NoError(t, err)

	var reply struct {
		ready, stalled bool
	}
	answers := 0
	for !reply.ready {
		require.LessOrEqual(t, answers, domain.MaxClarificationTurns+1, "dialog did not terminate")
		r, err := svc.Respond(context.Background(), state, "I don't know")
		require.NoError(t, err)
		answers++
		reply.ready, reply.stalled = r.Ready, r.Stalled
	}

	assert.Equal(t, domain.MaxClarificationTurns+1, answers)
	assert.True(t, reply.stalled)
	assert.True(t, svc.Stalled(state))
}

func TestClarification_Respond_Errors(t *testing.T) {
	svc, _ := newTestClarification(&fakeExtractor{}, nil)

	_, err := svc.Respond(context.Background(), nil, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Respond(ctx, domain.NewDialogState(time.Now()), "x")
	assert.ErrorIs(t, err, domain.ErrStopped)
}

func TestClarification_ResumeAndLatest(t *testing.T) {
	svc, _ := newTestClarification(&fakeExtractor{fallback: "{}"}, nil)

	state, _, err := svc.Start(context.Background(), "a bot")
	require.NoError(t, err)

	resumed, err := svc.Resume(context.Background(), state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "a bot", resumed.Profile.InitialTask)

	latest, err := svc.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, state.SessionID, latest.SessionID)

	_, err = svc.Resume(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClarification_Summary(t *testing.T) {
	svc, _ := newTestClarification(&fakeExtractor{}, nil)
	state := domain.NewDialogState(time.Now())

	summary := svc.Summary(state)
	assert.Contains(t, summary, "Session:    "+state.SessionID)
	assert.Contains(t, summary, "Ready:      false")
}

func TestClarification_ProposeQuestions(t *testing.T) {
	gen := newFakeGenerator(map[string]string{
		"clarifier": "QUESTIONS:\n- Which colors should the page use?\n- Size?\n" +
			"- Should the animation loop forever?\nThanks",
	})
	svc, _ := newTestClarification(&fakeExtractor{}, gen)

	list, err := svc.ProposeQuestions(context.Background(), "animated logo")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Which colors should the page use?",
		"Should the animation loop forever?",
	}, list.Questions)

	q, ok := list.Next()
	require.True(t, ok)
	list.Answer("blue")
	assert.Equal(t, "blue", list.Answers[q])
}

func TestClarification_ProposeQuestions_Errors(t *testing.T) {
	svc, _ := newTestClarification(&fakeExtractor{}, nil)
	_, err := svc.ProposeQuestions(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrGeneratorUnavailable)

	gen := newFakeGenerator(nil)
	gen.err = errors.New("offline")
	svc, _ = newTestClarification(&fakeExtractor{}, gen)
	_, err = svc.ProposeQuestions(context.Background(), "x")
	assert.Error(t, err)
}

func TestRenderBrief_Defaults(t *testing.T) {
	p := domain.NewRequirementProfile()
	require.NoError(t, p.SetInitialTask("a spinning cube"))

	brief := RenderBrief(p)
	assert.Contains(t, brief, "## Task\na spinning cube")
	assert.Contains(t, brief, "dark tones (default)")
	assert.Contains(t, brief, "3. Effects: basic.")
	assert.NotContains(t, brief, "## Features")
}

func TestClarification_Start_SameSecondGetsSuffix(t *testing.T) {
	svc, sessions := newTestClarification(&fakeExtractor{fallback: "{}"}, nil)
	ctx := context.Background()

	first, _, err := svc.Start(ctx, "a red site")
	require.NoError(t, err)
	second, _, err := svc.Start(ctx, "a blue bot")
	require.NoError(t, err)
	third, _, err := svc.Start(ctx, "a green game")
	require.NoError(t, err)

	assert.Equal(t, "20240501_103000", first.SessionID)
	assert.Equal(t, "20240501_103000_2", second.SessionID)
	assert.Equal(t, "20240501_103000_3", third.SessionID)

	saved, err := sessions.Load(ctx, first.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "a red site", saved.Profile.InitialTask)
	saved, err = sessions.Load(ctx, second.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "a blue bot", saved.Profile.InitialTask)
}

func TestClarification_ReserveSessionID_Unsaved(t *testing.T) {
	svc, _ := newTestClarification(&fakeExtractor{}, nil)
	ctx := context.Background()

	a := svc.reserveSessionID(ctx, "20240501_103000")
	b := svc.reserveSessionID(ctx, "20240501_103000")
	assert.Equal(t, "20240501_103000", a)
	assert.Equal(t, "20240501_103000_2", b)

	svc.releaseSessionID(a)
	assert.Equal(t, "20240501_103000", svc.reserveSessionID(ctx, "20240501_103000"))
}
