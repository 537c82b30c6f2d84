package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/Yukio-aki/ai-office/internal/logger"
)

var tuiSession string

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui [task]",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for aioffice.

The TUI walks through the clarification dialog, runs the pipeline and
lets you browse past runs and change the LLM provider. Housekeeping
runs in the background while the TUI is open.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Send / Select
  Esc      - Back
  ctrl+r   - Run the pipeline
  ?        - Toggle help
  ctrl+c   - Quit (stops a running pipeline)`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUICommand,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiSession, "session", "", "resume a saved clarification session")
	rootCmd.AddCommand(tuiCmd)
}

func runTUICommand(cmd *cobra.Command, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	if clarificationService == nil {
		return errNotConfigured("clarification")
	}

	// The TUI is long-running, so background housekeeping runs alongside it.
	if schedulerConfig.Enabled && scheduler != nil {
		schedulerCtx, schedulerCancel := context.WithCancel(commandContext(cmd))
		defer schedulerCancel()

		go func() {
			if err := scheduler.Start(schedulerCtx); err != nil {
				logger.Warn("scheduler stopped: %v", err)
			}
		}()

		defer func() {
			if err := scheduler.Stop(); err != nil {
				logger.Warn("scheduler stop error: %v", err)
			}
		}()
	}

	task := ""
	if len(args) > 0 {
		task = args[0]
	}
	return runTUIApp(cmd, task, tuiSession)
}
