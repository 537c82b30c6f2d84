package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
)

// openSession starts a new clarification session for task, or resumes
// sessionID when set. It returns the state and the first question, which is
// empty when the session is already ready.
func openSession(cmd *cobra.Command, task, sessionID string) (*domain.DialogState, string, error) {
	ctx := commandContext(cmd)

	if sessionID != "" {
		state, err := clarificationService.Resume(ctx, sessionID)
		if err != nil {
			return nil, "", fmt.Errorf("resuming session %s: %w", sessionID, err)
		}
		cmd.Printf("Resumed session %s (turn %d, confidence %.0f%%)\n",
			state.SessionID, state.TurnCount, state.Profile.Confidence())
		if clarificationService.IsReady(state) {
			return state, "", nil
		}
		question := state.ActiveQuestion
		if question == "" {
			question, _ = clarificationService.NextQuestion(state)
		}
		return state, question, nil
	}

	state, welcome, err := clarificationService.Start(ctx, task)
	if err != nil {
		return nil, "", fmt.Errorf("starting clarification: %w", err)
	}
	cmd.Println(welcome)
	return state, state.ActiveQuestion, nil
}

// converse asks questions on stdin until the session is ready.
// Termination is bounded by the service's turn ceiling, even on EOF.
func converse(cmd *cobra.Command, reader *bufio.Reader, state *domain.DialogState, question string) error {
	ctx := commandContext(cmd)

	for question != "" {
		cmd.Printf("\n%s\n> ", question)
		answer, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading answer: %w", err)
		}
		answer = strings.TrimSpace(answer)

		reply, err := clarificationService.Respond(ctx, state, answer)
		if err != nil {
			return fmt.Errorf("clarification failed: %w", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if reply.Ready {
			if reply.Stalled {
				cmd.Println("\nThat is all the questions. Going with what we have.")
			}
			return nil
		}
		question = reply.Question
	}
	return nil
}

// askQuestionList runs the generator-proposed question mode and returns the
// task text extended with the answers.
func askQuestionList(cmd *cobra.Command, reader *bufio.Reader, task string) (string, error) {
	list, err := clarificationService.ProposeQuestions(commandContext(cmd), task)
	if err != nil {
		return "", fmt.Errorf("proposing questions: %w", err)
	}

	for {
		question, ok := list.Next()
		if !ok {
			break
		}
		cmd.Printf("\n%s\n> ", question)
		answer, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading answer: %w", err)
		}
		list.Answer(strings.TrimSpace(answer))
	}

	if len(list.Questions) == 0 {
		return task, nil
	}
	return task + "\n\n" + list.AnswersText(), nil
}

// printBrief prints the technical brief for a finished session.
func printBrief(cmd *cobra.Command, state *domain.DialogState) {
	cmd.Println()
	cmd.Println(clarificationService.Brief(state.Profile))
}
