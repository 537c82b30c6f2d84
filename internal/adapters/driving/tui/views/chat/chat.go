// Package chat provides the clarification chat view for the TUI.
// The first message is the task; every later message answers the
// active question until the requirement profile is ready.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Yukio-aki/ai-office/internal/adapters/driving/tui/components/input"
	"github.com/Yukio-aki/ai-office/internal/adapters/driving/tui/components/status"
	"github.com/Yukio-aki/ai-office/internal/adapters/driving/tui/keymap"
	"github.com/Yukio-aki/ai-office/internal/adapters/driving/tui/messages"
	"github.com/Yukio-aki/ai-office/internal/adapters/driving/tui/styles"
	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driving"
)

// Phase is where the conversation stands.
type Phase int

const (
	// PhaseTask waits for the initial task.
	PhaseTask Phase = iota
	// PhaseAsking waits for an answer to the active question.
	PhaseAsking
	// PhaseBrief holds a finished brief; the pipeline can be started.
	PhaseBrief
	// PhaseRunning has a pipeline run in flight.
	PhaseRunning
	// PhaseDone has a finished pipeline run.
	PhaseDone
	// PhaseFailed ends a session whose profile could not be saved.
	PhaseFailed
)

// line is one rendered chat entry.
type line struct {
	role domain.Role
	text string
}

// View is the clarification chat.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.ChatInput
	statusbar *status.Bar

	clarification driving.ClarificationService
	pipeline      driving.PipelineService
	ctx           context.Context

	state *domain.DialogState
	lines []line
	brief string
	phase Phase
	busy  bool
	run   *domain.PipelineRun
	err   error

	width  int
	height int
	ready  bool
}

// NewView creates a new chat view. pipeline may be nil, in which case the
// chat ends at the brief.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	clarification driving.ClarificationService,
	pipeline driving.PipelineService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewChatInput(s),
		statusbar:     status.NewBar(s, km),
		clarification: clarification,
		pipeline:      pipeline,
		ctx:           context.Background(),
		width:         80,
		height:        24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Start submits task as the first message.
func (v *View) Start(task string) tea.Cmd {
	return v.submit(task)
}

// Resume continues a saved session.
func (v *View) Resume(state *domain.DialogState) {
	v.Reset()
	v.state = state
	for _, m := range state.History {
		v.lines = append(v.lines, line{role: m.Role, text: m.Text})
	}
	v.phase = PhaseAsking
	if v.clarification != nil && v.clarification.IsReady(state) {
		v.finishClarification(v.clarification.Brief(state.Profile))
	}
	v.updateProgress()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SessionStarted:
		v.handleSessionStarted(msg)
		return v, nil

	case messages.ReplyReceived:
		v.handleReply(msg)
		return v, nil

	case messages.PipelineFinished:
		v.handlePipelineFinished(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.busy = false
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case keymap.Matches(msg.String(), v.keymap.Stop):
		if v.phase == PhaseRunning && v.pipeline != nil {
			v.pipeline.Stop()
			v.statusbar.SetMessage("Stopping after the current stage...")
		}
		return v, nil

	case keymap.Matches(msg.String(), v.keymap.Run):
		if v.phase == PhaseBrief || v.phase == PhaseDone {
			return v, v.runPipeline()
		}
		return v, nil

	case msg.Type == tea.KeyEsc:
		if v.phase == PhaseRunning {
			return v, nil
		}
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case msg.Type == tea.KeyEnter:
		text := strings.TrimSpace(v.input.Value())
		if text == "" || v.busy || v.phase > PhaseAsking {
			return v, nil
		}
		v.input.Reset()
		return v, v.submit(text)
	}

	if v.busy || v.phase > PhaseAsking {
		return v, nil
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit sends text as the task or as an answer, depending on the phase.
func (v *View) submit(text string) tea.Cmd {
	if v.busy || v.phase > PhaseAsking {
		return nil
	}
	if v.clarification == nil {
		v.setError(ErrNoClarificationService)
		return nil
	}

	v.lines = append(v.lines, line{role: domain.RoleUser, text: text})
	v.busy = true
	v.err = nil
	v.statusbar.SetState(status.StateThinking)

	ctx := v.ctx
	svc := v.clarification
	if v.phase == PhaseTask {
		return func() tea.Msg {
			state, welcome, err := svc.Start(ctx, text)
			return messages.SessionStarted{State: state, Welcome: welcome, Err: err}
		}
	}

	state := v.state
	return func() tea.Msg {
		reply, err := svc.Respond(ctx, state, text)
		return messages.ReplyReceived{Reply: reply, Err: err}
	}
}

func (v *View) handleSessionStarted(msg messages.SessionStarted) {
	v.busy = false
	if msg.Err != nil {
		v.state = msg.State
		v.fail(msg.Err)
		return
	}
	if msg.State == nil {
		return
	}

	v.state = msg.State
	v.phase = PhaseAsking
	v.lines = append(v.lines, line{role: domain.RoleSystem, text: msg.Welcome})
	v.input.SetPlaceholder("Your answer...")

	if msg.State.ActiveQuestion == "" {
		v.finishClarification(v.clarification.Brief(msg.State.Profile))
	}
	v.updateProgress()
}

func (v *View) handleReply(msg messages.ReplyReceived) {
	v.busy = false
	if msg.Err != nil {
		v.fail(msg.Err)
		return
	}
	reply := msg.Reply

	switch {
	case reply.Ready:
		text := "Enough information collected."
		if reply.Stalled {
			text = "That is all the questions. Going with what we have."
		}
		v.lines = append(v.lines, line{role: domain.RoleSystem, text: text})
		v.finishClarification(reply.Brief)
	case reply.Question != "":
		v.lines = append(v.lines, line{role: domain.RoleSystem, text: reply.Question})
	}
	v.updateProgress()
}

// fail reports a clarification error. An unsaved profile ends the session;
// other errors leave the current question open.
func (v *View) fail(err error) {
	v.setError(err)
	if errors.Is(err, domain.ErrPersistence) {
		v.phase = PhaseFailed
		v.input.Blur()
	}
}

func (v *View) finishClarification(brief string) {
	v.brief = brief
	v.phase = PhaseBrief
	v.input.Blur()
	v.statusbar.SetState(status.StateBrief)
}

func (v *View) runPipeline() tea.Cmd {
	if v.pipeline == nil {
		v.setError(ErrNoPipelineService)
		return nil
	}
	if v.state == nil {
		return nil
	}

	v.phase = PhaseRunning
	v.run = nil
	v.err = nil
	v.statusbar.SetState(status.StateRunning)
	v.statusbar.SetMessage("")

	ctx := v.ctx
	svc := v.pipeline
	task := v.state.Profile.InitialTask
	profile := v.state.Profile.Clone()
	return func() tea.Msg {
		run, err := svc.Execute(ctx, task, driving.ExecuteOptions{Profile: profile})
		return messages.PipelineFinished{Run: run, Err: err}
	}
}

func (v *View) handlePipelineFinished(msg messages.PipelineFinished) {
	v.phase = PhaseDone
	v.run = msg.Run
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.statusbar.SetState(status.StateDone)
	if msg.Run != nil && msg.Run.ArtifactPath != "" {
		v.statusbar.SetMessage("Saved " + msg.Run.ArtifactPath)
	}
}

func (v *View) setError(err error) {
	if err == nil {
		return
	}
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) updateProgress() {
	if v.state == nil {
		return
	}
	v.statusbar.SetProgress(v.state.TurnCount, v.state.Profile.Confidence())
	if v.phase == PhaseAsking && v.statusbar.State() == status.StateThinking {
		v.statusbar.SetState(status.StateReady)
	}
}

// View renders the chat.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("AI Office"), "")

	sections = append(sections, v.renderHistory())

	if v.phase >= PhaseBrief && v.brief != "" {
		sections = append(sections, "", v.styles.Brief.Render(v.brief))
	}

	if v.run != nil {
		sections = append(sections, "", v.renderRun())
	}

	if v.err != nil {
		sections = append(sections, "", v.styles.Error.Render("Error: "+v.err.Error()))
	}

	if v.phase <= PhaseAsking {
		sections = append(sections, "", v.input.View())
	}

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHistory renders the newest lines that fit the view.
func (v *View) renderHistory() string {
	if len(v.lines) == 0 {
		return v.styles.Muted.Render("Describe what you want to build and press enter.")
	}

	rendered := make([]string, 0, len(v.lines))
	for _, l := range v.lines {
		prefix := v.styles.AssistantLine.Render("Office: ")
		if l.role == domain.RoleUser {
			prefix = v.styles.UserLine.Render("You: ")
		}
		rendered = append(rendered, prefix+v.styles.Normal.Render(l.text))
	}

	history := strings.Join(rendered, "\n")
	all := strings.Split(history, "\n")
	budget := v.height - 10
	if budget < 3 {
		budget = 3
	}
	if len(all) > budget && v.phase <= PhaseAsking {
		all = all[len(all)-budget:]
	}
	return strings.Join(all, "\n")
}

func (v *View) renderRun() string {
	run := v.run
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s: %s", run.ID, run.Status)
	if run.Unapproved() {
		b.WriteString(" (reviewer never approved)")
	}
	for _, out := range run.Outputs {
		fmt.Fprintf(&b, "\n  %s", out.Label())
	}
	if run.ArtifactPath != "" {
		fmt.Fprintf(&b, "\nArtifact: %s", run.ArtifactPath)
	}
	return v.styles.Subtitle.Render(b.String())
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// Reset clears the conversation.
func (v *View) Reset() {
	v.state = nil
	v.lines = nil
	v.brief = ""
	v.phase = PhaseTask
	v.busy = false
	v.run = nil
	v.err = nil
	v.input.Reset()
	v.input.SetPlaceholder("Describe what you want to build...")
	v.input.Focus()
	v.statusbar.Clear()
}

// Phase returns the conversation phase.
func (v *View) Phase() Phase {
	return v.phase
}

// State returns the dialog state, nil before the first message.
func (v *View) State() *domain.DialogState {
	return v.state
}

// Brief returns the final brief once clarification is over.
func (v *View) Brief() string {
	return v.brief
}

// Run returns the last pipeline run.
func (v *View) Run() *domain.PipelineRun {
	return v.run
}

// Busy reports whether a clarification call is in flight.
func (v *View) Busy() bool {
	return v.busy
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}
