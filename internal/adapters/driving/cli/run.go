package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Yukio-aki/ai-office/internal/adapters/driving/tui"
	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driving"
)

var (
	runSkipClarification bool
	runTextMode          bool
	runSession           string
	runQuestions         bool
	runTUI               bool
	runJSON              bool
)

var runCmd = &cobra.Command{
	Use:   "run [task]",
	Short: "Clarify a task and generate an artifact",
	Long: `Runs the full flow: a short clarification dialog on stdin, complexity
scoring, knowledge retrieval and the generation pipeline.

The artifact is written under ~/.aioffice/runs/<run_id>/ and copied into
~/.aioffice/projects/. Press ctrl+c to stop after the current stage.

Examples:
  aioffice run "a dark landing page with a glowing logo"
  aioffice run --skip-clarification "a python script that renames photos"
  aioffice run --session 20240501_120000
  aioffice run --tui "an animated portfolio"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runSkipClarification, "skip-clarification", false, "run the pipeline on the task text directly")
	runCmd.Flags().BoolVar(&runTextMode, "text-mode", false, "score complexity from the task text instead of the profile")
	runCmd.Flags().StringVar(&runSession, "session", "", "resume a saved clarification session")
	runCmd.Flags().BoolVar(&runQuestions, "questions", false, "let the generator propose a fixed question list")
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "clarify in the interactive terminal UI")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "output the run record as JSON")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errNotConfigured("pipeline")
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	var task string
	if len(args) > 0 {
		task = strings.TrimSpace(args[0])
	}
	if task == "" && runSession == "" {
		cmd.Print("What do you want to build? ")
		task = readLine(reader)
	}
	if task == "" && runSession == "" {
		return fmt.Errorf("%w: a task is required", domain.ErrInvalidInput)
	}

	if runTUI {
		return runTUIApp(cmd, task, runSession)
	}

	opts := driving.ExecuteOptions{TextMode: runTextMode}

	switch {
	case runSkipClarification:
		if task == "" {
			return fmt.Errorf("%w: --skip-clarification needs a task", domain.ErrInvalidInput)
		}

	case runQuestions:
		if clarificationService == nil {
			return errNotConfigured("clarification")
		}
		extended, err := askQuestionList(cmd, reader, task)
		if err != nil {
			return err
		}
		task = extended

	default:
		if clarificationService == nil {
			return errNotConfigured("clarification")
		}
		state, question, err := openSession(cmd, task, runSession)
		if err != nil {
			return err
		}
		if err := converse(cmd, reader, state, question); err != nil {
			return err
		}
		printBrief(cmd, state)
		opts.Profile = state.Profile.Clone()
		task = state.Profile.InitialTask
	}

	cmd.Println()
	cmd.Println("Running pipeline...")
	run, err := pipelineService.Execute(commandContext(cmd), task, opts)
	if run != nil {
		if runJSON {
			if jsonErr := printJSON(cmd, run); jsonErr != nil {
				return jsonErr
			}
		} else {
			printRun(cmd, run)
		}
	}
	if err != nil {
		if isStopped(err) {
			return errors.New("run stopped; partial output was kept")
		}
		return fmt.Errorf("pipeline failed: %w", err)
	}
	return nil
}

// runTUIApp opens the chat in the terminal UI.
func runTUIApp(cmd *cobra.Command, task, sessionID string) error {
	ports := tui.NewPorts(clarificationService, pipelineService, runService, settingsService)
	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(commandContext(cmd))

	if sessionID != "" {
		state, err := clarificationService.Resume(commandContext(cmd), sessionID)
		if err != nil {
			return fmt.Errorf("resuming session %s: %w", sessionID, err)
		}
		app.WithSession(state)
	} else {
		app.WithTask(task)
	}

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
