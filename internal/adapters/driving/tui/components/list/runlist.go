// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Yukio-aki/ai-office/internal/adapters/driving/tui/styles"
	"github.com/Yukio-aki/ai-office/internal/core/domain"
)

// RunList displays recorded pipeline runs in a navigable list.
type RunList struct {
	runs     []domain.PipelineRun
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewRunList creates a new run list component.
func NewRunList(s *styles.Styles) *RunList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &RunList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the run list.
func (r *RunList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *RunList) Update(msg tea.Msg) (*RunList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the run list.
func (r *RunList) View() string {
	if len(r.runs) == 0 {
		return r.styles.Muted.Render("No runs yet")
	}

	lines := make([]string, 0, len(r.runs)*2+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Runs (%d)", len(r.runs))), "")

	// Each run takes two lines.
	visible := (r.height - 4) / 2
	if visible < 1 {
		visible = 1
	}

	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := min(start+visible, len(r.runs))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderRun(i, &r.runs[i]))
	}

	return strings.Join(lines, "\n")
}

func (r *RunList) renderRun(index int, run *domain.PipelineRun) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	name := run.ProjectName
	maxName := r.width - 30
	if maxName < 10 {
		maxName = 10
	}
	if len(name) > maxName {
		name = name[:maxName-3] + "..."
	}

	status := string(run.Status)
	if run.Unapproved() {
		status += " (unapproved)"
	}

	head := fmt.Sprintf("%s%s  %-*s", indicator, run.ID, maxName, name)
	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(head + "  " + status)
	} else {
		titleLine = r.styles.Normal.Render(head+"  ") + r.statusStyle(run).Render(status)
	}

	detail := fmt.Sprintf("    L%d %s, %d stage outputs", run.Complexity.Level, run.Complexity.Name, len(run.Outputs))
	if run.Error != "" {
		detail += ", " + run.Error
	}
	return titleLine + "\n" + r.styles.Muted.Render(detail)
}

func (r *RunList) statusStyle(run *domain.PipelineRun) lipgloss.Style {
	switch {
	case run.Status == domain.RunStatusFailed:
		return r.styles.Error
	case run.Unapproved():
		return r.styles.Warning
	default:
		return r.styles.Success
	}
}

// SetRuns replaces the listed runs.
func (r *RunList) SetRuns(runs []domain.PipelineRun) {
	r.runs = runs
	r.selected = 0
}

// Runs returns the listed runs.
func (r *RunList) Runs() []domain.PipelineRun {
	return r.runs
}

// Selected returns the index of the selected run.
func (r *RunList) Selected() int {
	return r.selected
}

// SelectedRun returns the currently selected run, or nil if none.
func (r *RunList) SelectedRun() *domain.PipelineRun {
	if r.selected < 0 || r.selected >= len(r.runs) {
		return nil
	}
	return &r.runs[r.selected]
}

// MoveUp moves selection up.
func (r *RunList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *RunList) MoveDown() {
	if r.selected < len(r.runs)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *RunList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of runs.
func (r *RunList) Count() int {
	return len(r.runs)
}
