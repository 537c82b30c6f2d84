package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()
	require.NotNil(t, km)

	tests := []struct {
		name    string
		binding key.Binding
		keys    []string
	}{
		{"quit", km.Quit, []string{"ctrl+c"}},
		{"help", km.Help, []string{"?"}},
		{"back", km.Back, []string{"esc"}},
		{"send", km.Send, []string{"enter"}},
		{"up", km.Up, []string{"up", "k"}},
		{"down", km.Down, []string{"down", "j"}},
		{"select", km.Select, []string{"enter"}},
		{"run", km.Run, []string{"ctrl+r"}},
		{"stop", km.Stop, []string{"ctrl+s"}},
		{"refresh", km.Refresh, []string{"r"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range tt.keys {
				assert.Contains(t, tt.binding.Keys(), k)
			}
			assert.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestQuitDoesNotStealTyping(t *testing.T) {
	km := DefaultKeyMap()

	// Chat input must accept a plain q.
	assert.NotContains(t, km.Quit.Keys(), "q")
}

func TestHelpSets(t *testing.T) {
	km := DefaultKeyMap()

	assert.Equal(t, []key.Binding{km.Send, km.Back, km.Quit}, km.ShortHelp())
	assert.Equal(t, []key.Binding{km.Run, km.Back, km.Quit}, km.ReadyHelp())
	assert.Equal(t, []key.Binding{km.Stop, km.Quit}, km.RunningHelp())

	full := km.FullHelp()
	require.Len(t, full, 3)
	for _, row := range full {
		assert.NotEmpty(t, row)
	}
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("k", km.Up))
	assert.True(t, Matches("ctrl+r", km.Run))
	assert.False(t, Matches("x", km.Up))
	assert.False(t, Matches("", km.Send))
}
