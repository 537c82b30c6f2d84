package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
)

var housekeepingCmd = &cobra.Command{
	Use:   "housekeeping",
	Short: "Backup and cleanup tasks",
}

var housekeepingRunCmd = &cobra.Command{
	Use:   "run [task...]",
	Short: "Run housekeeping tasks once",
	Long: `Runs the projects backup and temp-file cleanup immediately, in parallel.

Tasks: projects-backup, temp-cleanup. With no arguments both run.`,
	ValidArgs: []string{domain.TaskIDProjectsBackup, domain.TaskIDTempCleanup},
	Args:      cobra.OnlyValidArgs,
	RunE:      runHousekeeping,
}

func init() {
	housekeepingCmd.AddCommand(housekeepingRunCmd)
	rootCmd.AddCommand(housekeepingCmd)
}

func runHousekeeping(cmd *cobra.Command, args []string) error {
	if scheduler == nil {
		return errNotConfigured("scheduler")
	}

	tasks := args
	if len(tasks) == 0 {
		tasks = []string{domain.TaskIDProjectsBackup, domain.TaskIDTempCleanup}
	}

	g, ctx := errgroup.WithContext(commandContext(cmd))
	for _, id := range tasks {
		g.Go(func() error {
			if err := scheduler.RunOnce(ctx, id); err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("housekeeping failed: %w", err)
	}

	for _, id := range tasks {
		cmd.Printf("%s: done\n", id)
	}
	return nil
}
