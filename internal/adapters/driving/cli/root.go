// Package cli provides the cobra command tree for aioffice.
// It is a driving adapter: commands call core services through driving ports.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driving"
	"github.com/Yukio-aki/ai-office/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Services wired into the command tree.
var (
	pipelineService      driving.PipelineService
	clarificationService driving.ClarificationService
	complexityAnalyzer   driving.ComplexityAnalyzer
	knowledgeService     driving.KnowledgeService
	runService           driving.RunService
	settingsService      driving.SettingsService
	scheduler            driving.Scheduler
	schedulerConfig      domain.SchedulerConfig
)

// Global flags.
var (
	verbose   bool
	ephemeral bool
)

// annotationNoServices marks commands that run without bootstrapping services.
const annotationNoServices = "aioffice/no-services"

// errNotConfigured reports a command whose backing service was not wired.
func errNotConfigured(name string) error {
	return fmt.Errorf("%s service not configured", name)
}

// Services bundles the driving ports used by the commands.
type Services struct {
	Pipeline        driving.PipelineService
	Clarification   driving.ClarificationService
	Complexity      driving.ComplexityAnalyzer
	Knowledge       driving.KnowledgeService
	Runs            driving.RunService
	Settings        driving.SettingsService
	Scheduler       driving.Scheduler
	SchedulerConfig domain.SchedulerConfig
}

// SetServices installs the services used by every command.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	pipelineService = s.Pipeline
	clarificationService = s.Clarification
	complexityAnalyzer = s.Complexity
	knowledgeService = s.Knowledge
	runService = s.Runs
	settingsService = s.Settings
	scheduler = s.Scheduler
	schedulerConfig = s.SchedulerConfig
}

// Options are the global flag values handed to the bootstrap function.
type Options struct {
	Verbose   bool
	Ephemeral bool
}

// BootstrapFunc builds the services once flags are parsed.
// The returned cleanup runs after the command finishes.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, func(), error)

var (
	bootstrap BootstrapFunc
	cleanup   func()
)

// SetBootstrap registers the function that wires services before a command runs.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "aioffice",
	Short: "Turn a rough idea into a generated artifact",
	Long: `aioffice clarifies what you want through a short dialog, scores the
task's complexity, retrieves reference snippets and runs a bounded
translate, plan, generate and review pipeline against an LLM.

Run 'aioffice run "a landing page for a coffee shop"' to start.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep runs and sessions in memory only")
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[annotationNoServices] == "true" || bootstrap == nil {
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	services, done, err := bootstrap(ctx, Options{Verbose: verbose, Ephemeral: ephemeral})
	if err != nil {
		return fmt.Errorf("starting aioffice: %w", err)
	}
	SetServices(services)
	cleanup = done
	return nil
}

func teardown(_ *cobra.Command, _ []string) {
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	// PersistentPostRun is skipped when RunE fails.
	teardown(rootCmd, nil)
	return err
}

// commandContext returns the command's context or a background one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// isStopped reports whether err comes from a user interrupt.
func isStopped(err error) bool {
	return errors.Is(err, domain.ErrStopped) || errors.Is(err, context.Canceled)
}
