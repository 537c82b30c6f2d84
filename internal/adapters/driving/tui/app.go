package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Yukio-aki/ai-office/internal/adapters/driving/tui/keymap"
	"github.com/Yukio-aki/ai-office/internal/adapters/driving/tui/messages"
	"github.com/Yukio-aki/ai-office/internal/adapters/driving/tui/styles"
	"github.com/Yukio-aki/ai-office/internal/adapters/driving/tui/views/chat"
	"github.com/Yukio-aki/ai-office/internal/adapters/driving/tui/views/menu"
	"github.com/Yukio-aki/ai-office/internal/adapters/driving/tui/views/runs"
	"github.com/Yukio-aki/ai-office/internal/adapters/driving/tui/views/settings"
	"github.com/Yukio-aki/ai-office/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	menuView     *menu.View
	chatView     *chat.View
	runsView     *runs.View
	settingsView *settings.View

	// initialTask opens the chat with this message on start.
	initialTask string

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		menuView:     menu.NewView(s),
		chatView:     chat.NewView(s, km, ports.Clarification, ports.Pipeline),
		runsView:     runs.NewView(s, ports.Runs),
		settingsView: settings.NewView(s, ports.Settings),
		currentView:  messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.runsView.WithContext(ctx)
	return a
}

// WithTask opens the chat directly and submits task as the first message.
func (a *App) WithTask(task string) *App {
	a.initialTask = task
	if task != "" {
		a.currentView = messages.ViewChat
	}
	return a
}

// WithSession opens the chat on a saved clarification session.
func (a *App) WithSession(state *domain.DialogState) *App {
	if state != nil {
		a.chatView.Resume(state)
		a.currentView = messages.ViewChat
	}
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tea.SetWindowTitle("aioffice"),
	}
	if a.initialTask != "" {
		cmds = append(cmds, a.chatView.Start(a.initialTask))
		a.initialTask = ""
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if keymap.Matches(msg.String(), a.keymap.Quit) {
			if a.chatView.Phase() == chat.PhaseRunning && a.ports.Pipeline != nil {
				a.ports.Pipeline.Stop()
			}
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}

	case messages.ViewChanged:
		return a, a.switchView(msg.View)

	case messages.Quit:
		return a, tea.Quit

	case messages.ErrorOccurred:
		a.err = msg.Err

	// Async results go to their owner even if the user navigated away.
	case messages.SessionStarted, messages.ReplyReceived, messages.PipelineFinished:
		a.chatView, cmd = a.chatView.Update(msg)
		a.err = a.chatView.Err()
		return a, cmd

	case messages.RunsLoaded:
		a.runsView, cmd = a.runsView.Update(msg)
		return a, cmd

	case messages.SettingsLoaded, messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd
	}

	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewRuns:
		a.runsView, cmd = a.runsView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
	}

	return a, cmd
}

func (a *App) switchView(view messages.ViewType) tea.Cmd {
	a.currentView = view
	switch view {
	case messages.ViewChat:
		// Keep a conversation in progress.
		if a.chatView.State() == nil && !a.chatView.Busy() {
			a.chatView.Reset()
		}
		return a.chatView.Init()
	case messages.ViewRuns:
		return a.runsView.Init()
	case messages.ViewSettings:
		a.settingsView.Reset()
		return a.settingsView.Init()
	case messages.ViewMenu, messages.ViewHelp:
	}
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewRuns:
		return a.runsView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back to Menu
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  q           Quit

New project:
  (type)      Describe the task, then answer questions
  enter       Send
  ctrl+r      Run the pipeline once the brief is ready
  ctrl+s      Stop a running pipeline

Runs:
  j/k, ↑/↓    Navigate runs
  r           Refresh

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error.
func (a *App) Err() error {
	return a.err
}

// Ready reports whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.chatView.SetDimensions(width, height)
	a.runsView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
