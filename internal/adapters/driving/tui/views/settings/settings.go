// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Yukio-aki/ai-office/internal/adapters/driving/tui/messages"
	"github.com/Yukio-aki/ai-office/internal/adapters/driving/tui/styles"
	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driving"
)

// ErrNoSettingsService indicates that no settings service was provided.
var ErrNoSettingsService = errors.New("settings service not available")

// Section tracks which settings section is active.
type Section int

const (
	SectionOverview Section = iota
	SectionLLM
)

// Overview rows.
const (
	itemLLM = iota
	itemHousekeeping
	itemTestConnection
	overviewItems
)

// Key constants for key handling.
const (
	keyDown  = "down"
	keyEnter = "enter"
	keyTab   = "tab"
)

// connectionChecked carries the result of an LLM ping.
type connectionChecked struct {
	err error
}

// View is the settings configuration view.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	// Current settings
	settings *domain.AppSettings
	err      error
	notice   string

	// Navigation state
	section      Section
	selected     int // selection within current section
	focusedField int // 1 when the API key input has focus

	llmAPIKeyInput textinput.Model

	// Dimensions
	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	llmAPIKeyInput := textinput.New()
	llmAPIKeyInput.Placeholder = "Enter API key"
	llmAPIKeyInput.EchoMode = textinput.EchoPassword
	llmAPIKeyInput.CharLimit = 256

	return &View{
		styles:          s,
		settingsService: settingsService,
		section:         SectionOverview,
		llmAPIKeyInput:  llmAPIKeyInput,
	}
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

func (v *View) loadSettings() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsLoaded{Err: ErrNoSettingsService}
		}
		settings, err := svc.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.settings = msg.Settings
			v.err = nil
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.notice = "Saved"
		v.backToOverview()
		return v, v.loadSettings()

	case connectionChecked:
		if msg.err != nil {
			v.err = msg.err
			v.notice = ""
		} else {
			v.err = nil
			v.notice = "LLM connection OK"
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == "esc" {
		if v.section == SectionOverview {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
		v.backToOverview()
		return v, nil
	}

	switch v.section {
	case SectionOverview:
		return v.handleOverviewKeys(msg)
	case SectionLLM:
		return v.handleLLMKeys(msg)
	}
	return v, nil
}

func (v *View) handleOverviewKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < overviewItems-1 {
			v.selected++
		}
	case keyEnter:
		v.notice = ""
		switch v.selected {
		case itemLLM:
			v.section = SectionLLM
			v.selected = v.getLLMProviderIndex()
		case itemHousekeeping:
			enabled := v.settings == nil || !v.settings.Housekeeping.Enabled
			return v, v.setHousekeeping(enabled)
		case itemTestConnection:
			return v, v.testConnection()
		}
	}
	return v, nil
}

func (v *View) handleLLMKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	providers := domain.AllLLMProviders()

	if v.focusedField == 1 {
		switch msg.String() {
		case keyTab, "shift+tab":
			v.focusedField = 0
			v.llmAPIKeyInput.Blur()
			return v, nil
		case keyEnter:
			if v.selected >= 0 && v.selected < len(providers) {
				return v, v.setLLMProvider(providers[v.selected], v.llmAPIKeyInput.Value())
			}
		default:
			var cmd tea.Cmd
			v.llmAPIKeyInput, cmd = v.llmAPIKeyInput.Update(msg)
			return v, cmd
		}
		return v, nil
	}

	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < len(providers)-1 {
			v.selected++
		}
	case keyTab:
		if v.selected >= 0 && v.selected < len(providers) && providers[v.selected].RequiresAPIKey() {
			v.focusedField = 1
			return v, v.llmAPIKeyInput.Focus()
		}
	case keyEnter:
		if v.selected >= 0 && v.selected < len(providers) {
			provider := providers[v.selected]
			if provider.RequiresAPIKey() && !v.hasStoredKey(provider) {
				v.focusedField = 1
				return v, v.llmAPIKeyInput.Focus()
			}
			return v, v.setLLMProvider(provider, "")
		}
	}
	return v, nil
}

// hasStoredKey reports whether switching to provider can reuse the saved key.
func (v *View) hasStoredKey(provider domain.AIProvider) bool {
	return v.settings != nil && v.settings.LLM.Provider == provider && v.settings.LLM.APIKey != ""
}

func (v *View) backToOverview() {
	v.section = SectionOverview
	v.selected = 0
	v.focusedField = 0
	v.llmAPIKeyInput.SetValue("")
	v.llmAPIKeyInput.Blur()
}

// Commands to update settings.

func (v *View) setLLMProvider(provider domain.AIProvider, apiKey string) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Err: ErrNoSettingsService}
		}
		model := domain.DefaultLLMModels()[provider]
		return messages.SettingsSaved{Err: svc.SetLLMProvider(provider, model, apiKey)}
	}
}

func (v *View) setHousekeeping(enabled bool) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Err: ErrNoSettingsService}
		}
		return messages.SettingsSaved{Err: svc.SetHousekeeping(enabled)}
	}
}

func (v *View) testConnection() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return connectionChecked{err: ErrNoSettingsService}
		}
		return connectionChecked{err: svc.ValidateLLMConfig()}
	}
}

func (v *View) getLLMProviderIndex() int {
	if v.settings == nil {
		return 0
	}
	for i, p := range domain.AllLLMProviders() {
		if p == v.settings.LLM.Provider {
			return i
		}
	}
	return 0
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	} else if v.notice != "" {
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n\n")
	}

	if v.settings == nil {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		return b.String()
	}

	switch v.section {
	case SectionOverview:
		b.WriteString(v.renderOverview())
	case SectionLLM:
		b.WriteString(v.renderLLMSelect())
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

func (v *View) renderOverview() string {
	var b strings.Builder

	llmValue := "Not Set"
	if v.settings.LLM.Provider != "" {
		llmValue = fmt.Sprintf("%s (%s)", v.settings.LLM.Provider.Description(), v.settings.LLM.Model)
	}

	housekeeping := "disabled"
	if v.settings.Housekeeping.Enabled {
		housekeeping = "enabled"
	}

	items := []struct {
		label  string
		value  string
		status string
	}{
		{label: "LLM Provider", value: llmValue, status: v.getLLMStatus()},
		{label: "Housekeeping", value: housekeeping},
		{label: "Test LLM connection"},
	}

	for i, item := range items {
		indicator := "  "
		if i == v.selected {
			indicator = "> "
		}

		line := indicator + item.label
		if item.value != "" {
			line += ": " + item.value
		}
		if item.status != "" {
			line += " " + item.status
		}

		if i == v.selected {
			b.WriteString(v.styles.Selected.Render(line))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	gen := v.settings.Generation
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("Generation: max %d tokens, temperature %.1f, approval %q",
		gen.MaxTokens, gen.Temperature, gen.ApprovalToken)))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("Cache: %d entries, ttl %s", v.settings.Cache.Size, v.settings.Cache.TTL)))
	b.WriteString("\n")

	b.WriteString("\n")
	if v.settingsService != nil {
		if err := v.settingsService.Validate(); err != nil {
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Warning: %s", err.Error())))
		} else {
			b.WriteString(v.styles.Success.Render("Configuration is valid"))
		}
	}

	return b.String()
}

func (v *View) getLLMStatus() string {
	if v.settings.LLM.IsConfigured() {
		return v.styles.Success.Render("[configured]")
	}
	return v.styles.Warning.Render("[needs API key]")
}

func (v *View) renderLLMSelect() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Select LLM Provider"))
	b.WriteString("\n\n")

	providers := domain.AllLLMProviders()
	defaults := domain.DefaultLLMModels()
	for i, provider := range providers {
		indicator := "  "
		if i == v.selected && v.focusedField == 0 {
			indicator = "> "
		}

		current := ""
		if provider == v.settings.LLM.Provider {
			current = v.styles.Success.Render(" (current)")
		}

		line := fmt.Sprintf("%s%s%s", indicator, provider.Description(), current)
		if i == v.selected && v.focusedField == 0 {
			b.WriteString(v.styles.Selected.Render(line))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString("\n")

		if model, ok := defaults[provider]; ok {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("    Model: %s", model)))
			b.WriteString("\n")
		}
	}

	if v.selected >= 0 && v.selected < len(providers) && providers[v.selected].RequiresAPIKey() {
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render("API Key:"))
		b.WriteString("\n")
		b.WriteString(v.llmAPIKeyInput.View())
		b.WriteString("\n")
	}

	return b.String()
}

func (v *View) renderHelp() string {
	switch v.section {
	case SectionOverview:
		return v.styles.Help.Render("[j/k] navigate  [enter] edit  [esc] back")
	case SectionLLM:
		if v.focusedField == 1 {
			return v.styles.Help.Render("[tab] back to list  [enter] save  [esc] back")
		}
		return v.styles.Help.Render("[j/k] navigate  [tab] API key  [enter] select  [esc] back")
	default:
		return ""
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Reset resets the view to initial state.
func (v *View) Reset() {
	v.backToOverview()
	v.err = nil
	v.notice = ""
}
