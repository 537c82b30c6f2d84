// Command aioffice turns a rough task description into a generated artifact.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Yukio-aki/ai-office/internal/adapters/driven/ai"
	"github.com/Yukio-aki/ai-office/internal/adapters/driven/config/file"
	"github.com/Yukio-aki/ai-office/internal/adapters/driven/knowledge"
	"github.com/Yukio-aki/ai-office/internal/adapters/driven/roles"
	"github.com/Yukio-aki/ai-office/internal/adapters/driven/storage/fs"
	"github.com/Yukio-aki/ai-office/internal/adapters/driven/storage/memory"
	"github.com/Yukio-aki/ai-office/internal/adapters/driven/storage/sqlite"
	"github.com/Yukio-aki/ai-office/internal/adapters/driving/cli"
	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
	"github.com/Yukio-aki/ai-office/internal/core/services"
	"github.com/Yukio-aki/ai-office/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env is normal.
	_ = godotenv.Load()

	if home, err := file.HomeDir(); err == nil {
		logger.Init(logger.Options{File: filepath.Join(home, "logs", "aioffice.log")})
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(ctx); err != nil {
		report(err)
		return 1
	}
	return 0
}

// report prints a fatal error once. The console line and the log file
// entry come from the same call.
func report(err error) {
	logger.Error("%v", err)
}

// bootstrap wires adapters into services. The returned cleanup releases
// the database, the LLM client and the corpus watcher.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, func(), error) {
	home, err := file.HomeDir()
	if err != nil {
		return nil, nil, fmt.Errorf("getting home directory: %w", err)
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return nil, nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("loading settings: %w", err)
	}
	applyEnv(settings)

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*cli.Services, func(), error) {
		cleanup()
		return nil, nil, err
	}

	// Persistence.
	var (
		runStore       driven.RunStore
		schedulerStore driven.SchedulerStore
		sessionStore   driven.SessionStore
	)
	if opts.Ephemeral {
		runStore = memory.NewRunStore()
		schedulerStore = memory.NewSchedulerStore()
		sessionStore = memory.NewSessionStore()
	} else {
		store, err := sqlite.NewStore("")
		if err != nil {
			return fail(fmt.Errorf("opening database: %w", err))
		}
		closers = append(closers, func() {
			if err := store.Close(); err != nil {
				logger.Warn("closing database: %v", err)
			}
		})
		runStore = store.RunStore()
		schedulerStore = store.SchedulerStore()

		sessions, err := fs.NewSessionStore(home)
		if err != nil {
			return fail(fmt.Errorf("opening sessions: %w", err))
		}
		sessionStore = sessions
	}

	artifactStore, err := fs.NewArtifactStore(home)
	if err != nil {
		return fail(fmt.Errorf("opening artifact store: %w", err))
	}
	archiver, err := fs.NewArchiver(home)
	if err != nil {
		return fail(fmt.Errorf("opening archiver: %w", err))
	}
	janitor, err := fs.NewJanitor(home)
	if err != nil {
		return fail(fmt.Errorf("opening janitor: %w", err))
	}

	// LLM capabilities.
	prompts, err := file.NewPromptStore("")
	if err != nil {
		return fail(fmt.Errorf("opening prompts: %w", err))
	}
	llm, err := ai.CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		// Commands that need no LLM still work; the rest fail with ErrGeneratorUnavailable.
		logger.Warn("llm: %v", err)
		llm = nil
	}
	result := &ai.InitResult{LLMService: ai.Decorate(llm, settings.RateLimit), PromptStore: prompts}
	closers = append(closers, result.Close)
	llmRoles := roles.New(result.LLMService, result.PromptStore, settings.Generation)

	// Knowledge corpus with hot reload.
	corpus, err := knowledge.NewCorpus(settings.Knowledge.Dir)
	if err != nil {
		return fail(fmt.Errorf("opening knowledge corpus: %w", err))
	}
	knowledgeService := services.NewKnowledgeService(corpus)
	if err := knowledgeService.Reload(ctx); err != nil {
		logger.Warn("knowledge: %v", err)
	}
	watchCtx, stopWatch := context.WithCancel(ctx)
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		err := corpus.Watch(watchCtx, func() {
			if err := knowledgeService.Reload(watchCtx); err != nil {
				logger.Warn("knowledge: reload: %v", err)
				return
			}
			logger.Debug("knowledge: corpus reloaded")
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Debug("knowledge: watcher not running: %v", err)
		}
	}()
	closers = append(closers, func() {
		stopWatch()
		<-watchDone
	})

	// Core services.
	extraction := services.NewExtractionService(llmRoles)
	clarification := services.NewClarificationService(extraction, sessionStore, llmRoles)
	complexity := services.NewComplexityAnalyzer()
	artifacts := services.NewArtifactService(artifactStore, settings.Artifacts)
	orchestrator := services.NewOrchestrator(
		services.NewOrchestratorConfig(settings), llmRoles, llmRoles, artifacts, runStore)
	pipeline := services.NewPipelineService(extraction, complexity, knowledgeService, orchestrator, settings.Knowledge)
	scheduler := services.NewScheduler(settings.Housekeeping, schedulerStore, archiver, janitor)

	logger.Debug("bootstrap: home=%s provider=%s ephemeral=%v", home, settings.LLM.Provider, opts.Ephemeral)

	return &cli.Services{
		Pipeline:        pipeline,
		Clarification:   clarification,
		Complexity:      complexity,
		Knowledge:       knowledgeService,
		Runs:            services.NewRunService(runStore),
		Settings:        settingsService,
		Scheduler:       scheduler,
		SchedulerConfig: settings.Housekeeping,
	}, cleanup, nil
}

// applyEnv fills empty LLM settings from the environment.
func applyEnv(settings *domain.AppSettings) {
	llm := &settings.LLM
	switch llm.Provider {
	case domain.AIProviderOllama:
		if llm.BaseURL == "" {
			llm.BaseURL = os.Getenv("OLLAMA_HOST")
		}
	case domain.AIProviderOpenAI:
		if llm.APIKey == "" {
			llm.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case domain.AIProviderAnthropic:
		if llm.APIKey == "" {
			llm.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case domain.AIProviderGemini:
		if llm.APIKey == "" {
			llm.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
}
