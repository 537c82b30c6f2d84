package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
)

var clarifySession string

var clarifyCmd = &cobra.Command{
	Use:   "clarify [task]",
	Short: "Clarify a task without running the pipeline",
	Long: `Runs only the clarification dialog and prints the technical brief.
The session is saved and can be continued later with
'aioffice run --session <id>'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClarify,
}

func init() {
	clarifyCmd.Flags().StringVar(&clarifySession, "session", "", "resume a saved session (use 'latest' for the newest)")
	rootCmd.AddCommand(clarifyCmd)
}

func runClarify(cmd *cobra.Command, args []string) error {
	if clarificationService == nil {
		return errNotConfigured("clarification")
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	sessionID := clarifySession
	if sessionID == "latest" {
		latest, err := clarificationService.Latest(commandContext(cmd))
		if err != nil {
			return fmt.Errorf("finding latest session: %w", err)
		}
		sessionID = latest.SessionID
	}

	var task string
	if len(args) > 0 {
		task = strings.TrimSpace(args[0])
	}
	if task == "" && sessionID == "" {
		cmd.Print("What do you want to build? ")
		task = readLine(reader)
		if task == "" {
			return fmt.Errorf("%w: a task is required", domain.ErrInvalidInput)
		}
	}

	state, question, err := openSession(cmd, task, sessionID)
	if err != nil {
		return err
	}
	if err := converse(cmd, reader, state, question); err != nil {
		return err
	}

	printBrief(cmd, state)
	cmd.Println()
	cmd.Println(clarificationService.Summary(state))
	cmd.Printf("\nSession %s saved. Continue with: aioffice run --session %s\n", state.SessionID, state.SessionID)
	return nil
}
