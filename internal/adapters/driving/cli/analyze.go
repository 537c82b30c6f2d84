package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
)

var (
	analyzeSession string
	analyzeJSON    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [task]",
	Short: "Score a task's complexity",
	Long: `Scores complexity and prints the stages that would run.

With a task argument the text-keyword mode is used. With --session the
saved requirement profile is scored instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSession, "session", "", "score the profile of a saved session")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the level as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if complexityAnalyzer == nil {
		return errNotConfigured("complexity")
	}

	var level domain.ComplexityLevel
	switch {
	case analyzeSession != "":
		if clarificationService == nil {
			return errNotConfigured("clarification")
		}
		state, err := clarificationService.Resume(commandContext(cmd), analyzeSession)
		if err != nil {
			return fmt.Errorf("loading session %s: %w", analyzeSession, err)
		}
		level = complexityAnalyzer.AnalyzeProfile(state.Profile)
	case len(args) == 1 && strings.TrimSpace(args[0]) != "":
		level = complexityAnalyzer.AnalyzeText(args[0])
	default:
		return errors.New("a task or --session is required")
	}

	if analyzeJSON {
		return printJSON(cmd, level)
	}
	printLevel(cmd, level)
	return nil
}

func printLevel(cmd *cobra.Command, level domain.ComplexityLevel) {
	cmd.Printf("Level %d (%s)\n", level.Level, level.Name)
	if level.Description != "" {
		cmd.Printf("  %s\n", level.Description)
	}
	cmd.Printf("Score: %d\n", level.Score)
	cmd.Printf("Stages: %s\n", joinStages(level.Stages))
	cmd.Printf("Max retries: %d\n", level.MaxRetries)
	cmd.Printf("Min confidence: %.2f\n", level.MinConfidence)
}

func joinStages(stages []domain.Stage) string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.String()
	}
	return strings.Join(names, " -> ")
}
