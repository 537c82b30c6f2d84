package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yukio-aki/ai-office/internal/adapters/driving/tui/styles"
)

func TestNewChatInput(t *testing.T) {
	in := NewChatInput(styles.DefaultStyles())

	require.NotNil(t, in)
	assert.Empty(t, in.Value())
	assert.True(t, in.Focused())
	assert.NotNil(t, NewChatInput(nil).styles)
}

func TestChatInput_Init(t *testing.T) {
	assert.NotNil(t, NewChatInput(nil).Init())
}

func TestChatInput_Typing(t *testing.T) {
	in := NewChatInput(nil)

	for _, r := range "dark site" {
		in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "dark site", in.Value())
}

func TestChatInput_View(t *testing.T) {
	in := NewChatInput(nil)

	assert.Contains(t, in.View(), "You:")
}

func TestChatInput_ValueAndReset(t *testing.T) {
	in := NewChatInput(nil)

	in.SetValue("a parser for prices")
	assert.Equal(t, "a parser for prices", in.Value())

	in.Reset()
	assert.Empty(t, in.Value())
}

func TestChatInput_FocusBlur(t *testing.T) {
	in := NewChatInput(nil)

	in.Blur()
	assert.False(t, in.Focused())

	in.Focus()
	assert.True(t, in.Focused())
}

func TestChatInput_SetWidth(t *testing.T) {
	in := NewChatInput(nil)

	in.SetWidth(100)
	assert.Equal(t, 100, in.Width())
	assert.Equal(t, 90, in.textinput.Width)

	in.SetWidth(15)
	assert.Equal(t, 20, in.textinput.Width, "input width has a floor")
}

func TestChatInput_SetPlaceholder(t *testing.T) {
	in := NewChatInput(nil)

	in.SetPlaceholder("Your answer...")
	assert.Equal(t, "Your answer...", in.textinput.Placeholder)
}
