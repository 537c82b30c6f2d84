// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driving"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the clarification chat.
	ViewChat
	// ViewRuns lists recorded pipeline runs.
	ViewRuns
	// ViewHelp is the help/keybindings view.
	ViewHelp
	// ViewSettings is the settings configuration view.
	ViewSettings
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewRuns:
		return "runs"
	case ViewHelp:
		return "help"
	case ViewSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// SessionStarted carries a freshly opened or resumed clarification session.
type SessionStarted struct {
	State   *domain.DialogState
	Welcome string
	Err     error
}

// ReplyReceived carries the outcome of one clarification turn.
type ReplyReceived struct {
	Reply driving.Reply
	Err   error
}

// PipelineFinished carries the result of a pipeline run.
// Run is set whenever orchestration started, even on error.
type PipelineFinished struct {
	Run *domain.PipelineRun
	Err error
}

// RunsLoaded carries recent pipeline runs.
type RunsLoaded struct {
	Runs []domain.PipelineRun
	Err  error
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Err error
}
