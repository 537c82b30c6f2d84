package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
)

var (
	runsLimit int
	runsJSON  bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded pipeline runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run_id>",
	Short: "Show one run with its stage trace",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "maximum number of runs")
	runsListCmd.Flags().BoolVar(&runsJSON, "json", false, "output runs as JSON")
	runsShowCmd.Flags().BoolVar(&runsJSON, "json", false, "output the run as JSON")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	if runService == nil {
		return errNotConfigured("run")
	}

	runs, err := runService.List(commandContext(cmd), runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if runsJSON {
		return printJSON(cmd, runs)
	}

	if len(runs) == 0 {
		cmd.Println("No runs yet.")
		return nil
	}

	for i := range runs {
		r := &runs[i]
		cmd.Printf("%s  %-9s  L%d  %s\n", r.ID, statusLabel(r), r.Complexity.Level, r.ProjectName)
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	if runService == nil {
		return errNotConfigured("run")
	}

	run, err := runService.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	if runsJSON {
		return printJSON(cmd, run)
	}

	printRun(cmd, run)
	for _, out := range run.Outputs {
		cmd.Printf("\n=== %s ===\n", out.Label())
		cmd.Println(out.Output)
	}
	return nil
}

func statusLabel(run *domain.PipelineRun) string {
	if run.Unapproved() {
		return "unapproved"
	}
	return string(run.Status)
}

// printRun prints the summary of a run.
func printRun(cmd *cobra.Command, run *domain.PipelineRun) {
	cmd.Printf("Run %s: %s\n", run.ID, statusLabel(run))
	if run.ProjectName != "" {
		cmd.Printf("  Project: %s\n", run.ProjectName)
	}
	cmd.Printf("  Complexity: L%d %s (%s)\n", run.Complexity.Level, run.Complexity.Name, joinStages(run.Complexity.Stages))
	cmd.Printf("  Review: %s\n", run.Review)

	labels := make([]string, len(run.Outputs))
	for i, out := range run.Outputs {
		labels[i] = out.Label()
	}
	cmd.Printf("  Stages run: %d %v\n", len(run.Outputs), labels)

	if run.ArtifactPath != "" {
		cmd.Printf("  Artifact: %s\n", run.ArtifactPath)
	}
	if run.Error != "" {
		cmd.Printf("  Error: %s\n", run.Error)
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
