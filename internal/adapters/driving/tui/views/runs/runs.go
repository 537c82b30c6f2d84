// Package runs provides the recorded pipeline runs view for the TUI.
package runs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Yukio-aki/ai-office/internal/adapters/driving/tui/components/list"
	"github.com/Yukio-aki/ai-office/internal/adapters/driving/tui/messages"
	"github.com/Yukio-aki/ai-office/internal/adapters/driving/tui/styles"
	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driving"
)

// pageSize is how many runs are loaded.
const pageSize = 50

// ErrNoRunService indicates that no run service was provided.
var ErrNoRunService = errors.New("run service is required")

// View lists recent runs with a detail pane for the selected one.
type View struct {
	styles     *styles.Styles
	list       *list.RunList
	runService driving.RunService
	ctx        context.Context

	err    error
	loaded bool
	width  int
	height int
}

// NewView creates a new runs view.
func NewView(s *styles.Styles, runService driving.RunService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:     s,
		list:       list.NewRunList(s),
		runService: runService,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads recent runs.
func (v *View) Init() tea.Cmd {
	return v.loadRuns()
}

func (v *View) loadRuns() tea.Cmd {
	svc := v.runService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.RunsLoaded{Err: ErrNoRunService}
		}
		runs, err := svc.List(ctx, pageSize)
		return messages.RunsLoaded{Runs: runs, Err: err}
	}
}

// Update handles messages for the runs view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.RunsLoaded:
		v.loaded = true
		v.err = msg.Err
		if msg.Err == nil {
			v.list.SetRuns(msg.Runs)
		}
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case "r":
			return v, v.loadRuns()
		}
		v.list, _ = v.list.Update(msg)
	}
	return v, nil
}

// View renders the runs view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Runs"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	if !v.loaded {
		b.WriteString(v.styles.Muted.Render("Loading runs..."))
		return b.String()
	}

	b.WriteString(v.list.View())

	if run := v.list.SelectedRun(); run != nil {
		b.WriteString("\n\n")
		b.WriteString(v.renderDetail(run))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[j/k] navigate  [r] refresh  [esc] back"))
	return b.String()
}

func (v *View) renderDetail(run *domain.PipelineRun) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Started: %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Review: %s\n", run.Review)
	if run.ArtifactPath != "" {
		fmt.Fprintf(&b, "Artifact: %s\n", run.ArtifactPath)
	}
	labels := make([]string, 0, len(run.Outputs))
	for _, out := range run.Outputs {
		labels = append(labels, out.Label())
	}
	fmt.Fprintf(&b, "Stages: %s", strings.Join(labels, " -> "))
	return v.styles.Border.Padding(0, 1).Render(b.String())
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.list.SetDimensions(width, height-12)
}

// Runs returns the loaded runs.
func (v *View) Runs() []domain.PipelineRun {
	return v.list.Runs()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}
