package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
)

func TestClarifyCmd_NoService(t *testing.T) {
	setupTestServices(t, &Services{})

	_, err := executeCommand(t, "", "clarify", "a site")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "clarification service not configured")
}

func TestClarifyCmd_NewSession(t *testing.T) {
	clarification := &mockClarificationService{}
	setupTestServices(t, &Services{Clarification: clarification})

	out, err := executeCommand(t, "black\n", "clarify", "a site")

	require.NoError(t, err)
	assert.Contains(t, out, "Welcome!")
	assert.Contains(t, out, "BRIEF")
	assert.Contains(t, out, "SUMMARY 20240501_120000")
	assert.Contains(t, out, "Session 20240501_120000 saved. Continue with: aioffice run --session 20240501_120000")
	assert.Equal(t, []string{"black"}, clarification.answers)
}

func TestClarifyCmd_TaskFromPrompt(t *testing.T) {
	clarification := &mockClarificationService{}
	setupTestServices(t, &Services{Clarification: clarification})

	out, err := executeCommand(t, "a site\nblack\n", "clarify")

	require.NoError(t, err)
	assert.Contains(t, out, "What do you want to build? ")
	assert.Equal(t, []string{"black"}, clarification.answers)
}

func TestClarifyCmd_EmptyTask(t *testing.T) {
	setupTestServices(t, &Services{Clarification: &mockClarificationService{}})

	_, err := executeCommand(t, "", "clarify")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClarifyCmd_LatestSession(t *testing.T) {
	var resumed []string
	clarification := &mockClarificationService{
		ResumeFunc: func(_ context.Context, id string) (*domain.DialogState, error) {
			resumed = append(resumed, id)
			state := domain.NewDialogState(time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC))
			state.ActiveQuestion = "How many pages?"
			return state, nil
		},
	}
	setupTestServices(t, &Services{Clarification: clarification})

	out, err := executeCommand(t, "three\n", "clarify", "--session", "latest")

	require.NoError(t, err)
	// Latest resolves the ID, then the session is resumed by that ID.
	assert.Equal(t, []string{"latest", "20240502_093000"}, resumed)
	assert.Contains(t, out, "How many pages?")
	assert.Equal(t, []string{"three"}, clarification.answers)
}

func TestClarifyCmd_NoLatestSession(t *testing.T) {
	setupTestServices(t, &Services{Clarification: &mockClarificationService{}})

	_, err := executeCommand(t, "", "clarify", "--session", "latest")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "finding latest session")
}
