package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTUICmd_Use(t *testing.T) {
	assert.Equal(t, "tui [task]", tuiCmd.Use)
	assert.Equal(t, "Launch the interactive terminal UI", tuiCmd.Short)
	assert.NotNil(t, tuiCmd.Flags().Lookup("session"))
}

func TestTUICmd_RequiresClarification(t *testing.T) {
	sched := &mockScheduler{}
	setupTestServices(t, &Services{Scheduler: sched})

	_, err := executeCommand(t, "", "tui")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "clarification service not configured")
	assert.False(t, sched.started)
}

func TestTUICmd_TooManyArgs(t *testing.T) {
	setupTestServices(t, &Services{Clarification: &mockClarificationService{}})

	_, err := executeCommand(t, "", "tui", "one", "two")

	require.Error(t, err)
}
