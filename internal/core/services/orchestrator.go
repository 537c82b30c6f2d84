package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driving"
	"github.com/Yukio-aki/ai-office/internal/logger"
	"github.com/Yukio-aki/ai-office/internal/salvage"
)

// Ensure Orchestrator implements the interface.
var _ driving.Orchestrator = (*Orchestrator)(nil)

// OrchestratorConfig is everything the orchestrator needs to know about its
// environment. It is passed in at construction; nothing is read from globals.
type OrchestratorConfig struct {
	// Model identifies the generator behind the capabilities. It is part of
	// every cache key so switching models never serves stale output.
	Model string

	// ApprovalToken is the literal that ends the review loop.
	ApprovalToken string

	// FileName is the artifact file used by the fallback plan.
	FileName string

	// Cache bounds the translate and plan output cache.
	Cache domain.CacheSettings
}

// NewOrchestratorConfig derives the orchestrator configuration from settings.
func NewOrchestratorConfig(settings *domain.AppSettings) OrchestratorConfig {
	return OrchestratorConfig{
		Model:         string(settings.LLM.Provider) + "/" + settings.LLM.Model,
		ApprovalToken: settings.Generation.ApprovalToken,
		FileName:      settings.Artifacts.FileName,
		Cache:         settings.Cache,
	}
}

// Orchestrator runs the stage list of a complexity level, one stage at a time.
// Each stage output is persisted before the next stage starts.
type Orchestrator struct {
	config    OrchestratorConfig
	generator driven.Generator
	reviewer  driven.Reviewer
	artifacts *ArtifactService
	runs      driven.RunStore

	cache *expirable.LRU[string, string]
	stops stopRegistry
	now   func() time.Time

	// reserved holds the IDs of runs in flight that may not be in the
	// run store yet.
	idMu     sync.Mutex
	reserved map[string]struct{}
}

// NewOrchestrator creates an orchestrator. reviewer may be nil when no level
// in use has a review stage; runs may be nil to skip the run index.
func NewOrchestrator(
	config OrchestratorConfig,
	generator driven.Generator,
	reviewer driven.Reviewer,
	artifacts *ArtifactService,
	runs driven.RunStore,
) *Orchestrator {
	if config.ApprovalToken == "" {
		config.ApprovalToken = domain.DefaultApprovalToken
	}
	if config.FileName == "" {
		config.FileName = domain.DefaultAppSettings().Artifacts.FileName
	}

	o := &Orchestrator{
		config:    config,
		generator: generator,
		reviewer:  reviewer,
		artifacts: artifacts,
		runs:      runs,
		now:       time.Now,
		reserved:  make(map[string]struct{}),
	}
	if config.Cache.Size > 0 {
		o.cache = expirable.NewLRU[string, string](config.Cache.Size, nil, config.Cache.TTL)
	}
	return o
}

// Stop asks the runs in flight to abandon their remaining stages. With no
// run in flight the request applies to the next run. Requests are checked
// between stages and between review iterations.
func (o *Orchestrator) Stop() {
	o.stops.stop()
}

// Run executes the stages of complexity against a snapshot of profile.
// The returned run is never nil; on error it is marked failed and its
// partial trace is already persisted.
func (o *Orchestrator) Run(
	ctx context.Context,
	profile *domain.RequirementProfile,
	complexity domain.ComplexityLevel,
	knowledge domain.KnowledgeContext,
) (*domain.PipelineRun, error) {
	sig, done := o.stops.begin(stopSignalFrom(ctx))
	defer done()

	if profile == nil {
		profile = domain.NewRequirementProfile()
	}
	snapshot := profile.Clone()
	run := &domain.PipelineRun{
		ID:          o.reserveRunID(ctx),
		ProjectName: snapshot.ProjectName(),
		Profile:     snapshot,
		Complexity:  complexity,
		Outputs:     []domain.StageOutput{},
		Status:      domain.RunStatusRunning,
		StartedAt:   o.now(),
	}
	defer func() { o.releaseRunID(run.ID) }()
	logger.Section("Run " + run.ID)
	logger.Info("orchestrator: L%d %s, stages %s", complexity.Level, complexity.Name, stageNames(complexity.Stages))

	if !complexity.HasStage(domain.StageGenerate) {
		return o.fail(ctx, run, fmt.Errorf("%w: stage list has no generate stage", domain.ErrInvalidInput))
	}
	if err := o.create(ctx, run); err != nil {
		return o.fail(ctx, run, err)
	}

	requirements := RenderBrief(snapshot)
	upstream := requirements
	var candidate string

	for _, stage := range complexity.Stages {
		if err := checkStop(ctx, sig); err != nil {
			return o.fail(ctx, run, err)
		}

		var err error
		switch stage {
		case domain.StageTranslate:
			var out string
			out, err = o.cached(ctx, stage, driven.PromptTranslator, upstream)
			if err == nil {
				run.Append(stage, 1, out)
				upstream = requirements + "\n\n## Technical requirements\n" + out
			}

		case domain.StagePlan:
			var out string
			out, err = o.cached(ctx, stage, driven.PromptPlanner, upstream)
			if err == nil {
				run.Append(stage, 1, out)
				plan := ParsePlan(out, planTech(snapshot), o.config.FileName)
				run.Plan = &plan
				upstream += "\n\n## Plan\n" + renderPlan(plan)
			}

		case domain.StageGenerate:
			candidate, err = o.call(ctx, driven.PromptDeveloper, upstream, RenderKnowledge(knowledge))
			if err == nil {
				run.Append(stage, 1, candidate)
			}

		case domain.StageReview:
			candidate, err = o.review(ctx, sig, run, candidate, requirements, complexity.MaxRetries)

		default:
			logger.Warn("orchestrator: skipping unknown stage %q", stage)
			continue
		}
		if err != nil {
			return o.fail(ctx, run, err)
		}
		if err := o.persist(ctx, run); err != nil {
			return o.fail(ctx, run, err)
		}
	}

	if !complexity.HasStage(domain.StageReview) {
		run.Review = domain.ReviewSkipped
	}

	path, err := o.artifacts.ExtractAndSave(ctx, candidate, run.ID, run.ProjectName)
	if err != nil {
		return o.fail(ctx, run, err)
	}
	run.Artifact = []byte(o.artifacts.Extract(candidate))
	run.ArtifactPath = path
	run.Status = domain.RunStatusSucceeded
	run.EndedAt = o.now()

	if err := o.persist(ctx, run); err != nil {
		return o.fail(ctx, run, err)
	}
	if run.Unapproved() {
		logger.Warn("orchestrator: run %s finished unapproved after %d reviews", run.ID, complexity.MaxRetries)
	}
	logger.Info("orchestrator: run %s succeeded", run.ID)
	return run, nil
}

// review runs at most maxRetries reviewer round trips. An approving
// response keeps the candidate; any other response replaces it.
func (o *Orchestrator) review(
	ctx context.Context,
	sig *stopSignal,
	run *domain.PipelineRun,
	candidate, requirements string,
	maxRetries int,
) (string, error) {
	if o.reviewer == nil {
		return candidate, fmt.Errorf("%w: no reviewer configured", domain.ErrGeneratorUnavailable)
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			if err := checkStop(ctx, sig); err != nil {
				return candidate, err
			}
		}

		resp, err := o.reviewer.Review(ctx, candidate, requirements)
		if err != nil {
			return candidate, o.capabilityError(ctx, err)
		}
		run.Append(domain.StageReview, attempt, resp)

		if salvage.Contains(resp, o.config.ApprovalToken) {
			run.Review = domain.ReviewApproved
			logger.Info("orchestrator: approved on review %d", attempt)
			return candidate, nil
		}
		candidate = resp

		if attempt < maxRetries {
			if err := o.persist(ctx, run); err != nil {
				return candidate, err
			}
		}
	}

	run.Review = domain.ReviewUnapproved
	logger.Debug("orchestrator: %v", domain.ErrApprovalExhausted)
	return candidate, nil
}

func (o *Orchestrator) call(ctx context.Context, role, prompt, extra string) (string, error) {
	out, err := o.generator.Run(ctx, role, prompt, extra)
	if err != nil {
		return "", o.capabilityError(ctx, err)
	}
	return out, nil
}

// cached serves translate and plan outputs from the owned cache. Generate
// and review are never cached.
func (o *Orchestrator) cached(ctx context.Context, stage domain.Stage, role, prompt string) (string, error) {
	if o.cache == nil {
		return o.call(ctx, role, prompt, "")
	}

	key := o.cacheKey(stage, prompt)
	if out, ok := o.cache.Get(key); ok {
		logger.Debug("orchestrator: %s served from cache", stage)
		return out, nil
	}
	out, err := o.call(ctx, role, prompt, "")
	if err != nil {
		return "", err
	}
	o.cache.Add(key, out)
	return out, nil
}

func (o *Orchestrator) cacheKey(stage domain.Stage, prompt string) string {
	sum := sha256.Sum256([]byte(o.config.Model + "\x00" + prompt))
	return string(stage) + ":" + hex.EncodeToString(sum[:])
}

// capabilityError classifies a Generator or Reviewer failure. Cancellation
// becomes ErrStopped; everything else is fatal as ErrGeneratorUnavailable.
func (o *Orchestrator) capabilityError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", domain.ErrStopped, err)
	}
	if errors.Is(err, domain.ErrGeneratorUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrGeneratorUnavailable, err)
}

func checkStop(ctx context.Context, sig *stopSignal) error {
	if sig.stopped() {
		return domain.ErrStopped
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStopped, err)
	}
	return nil
}

// maxCreateAttempts bounds the retries when run IDs collide across processes.
const maxCreateAttempts = 10

// create records a new run. An ID taken by another process is replaced with
// the next free suffix.
func (o *Orchestrator) create(ctx context.Context, run *domain.PipelineRun) error {
	if o.runs != nil {
		for attempt := 1; ; attempt++ {
			err := o.runs.CreateRun(ctx, run)
			if err == nil {
				break
			}
			if !errors.Is(err, domain.ErrAlreadyExists) || attempt == maxCreateAttempts {
				return fmt.Errorf("%w: create run %s: %w", domain.ErrPersistence, run.ID, err)
			}
			next := o.reserveRunID(ctx)
			o.releaseRunID(run.ID)
			logger.Debug("orchestrator: run id %s taken, using %s", run.ID, next)
			run.ID = next
		}
	}
	if _, err := o.artifacts.WriteTrace(ctx, run); err != nil {
		return err
	}
	return nil
}

// persist writes the run index entry and the trace file.
func (o *Orchestrator) persist(ctx context.Context, run *domain.PipelineRun) error {
	if o.runs != nil {
		if err := o.runs.SaveRun(ctx, run); err != nil {
			return fmt.Errorf("%w: save run %s: %w", domain.ErrPersistence, run.ID, err)
		}
	}
	if _, err := o.artifacts.WriteTrace(ctx, run); err != nil {
		return err
	}
	return nil
}

// fail marks the run failed and persists what exists. Persistence errors at
// this point are logged; the original error is returned.
func (o *Orchestrator) fail(ctx context.Context, run *domain.PipelineRun, err error) (*domain.PipelineRun, error) {
	run.Status = domain.RunStatusFailed
	run.Error = err.Error()
	run.EndedAt = o.now()

	if perr := o.persist(context.WithoutCancel(ctx), run); perr != nil {
		logger.Error("orchestrator: could not persist failed run %s: %v", run.ID, perr)
	}
	logger.Error("orchestrator: run %s failed: %v", run.ID, err)
	return run, err
}

// reserveRunID derives the run ID from the start time. A numeric suffix
// disambiguates runs started within the same second. The ID stays reserved
// until releaseRunID, so concurrent runs never share one.
func (o *Orchestrator) reserveRunID(ctx context.Context) string {
	o.idMu.Lock()
	defer o.idMu.Unlock()

	base := o.now().Format(domain.RunIDLayout)
	id := base
	for i := 2; ; i++ {
		if !o.idTaken(ctx, id) {
			o.reserved[id] = struct{}{}
			return id
		}
		id = domain.SuffixedID(base, i)
	}
}

func (o *Orchestrator) idTaken(ctx context.Context, id string) bool {
	if _, ok := o.reserved[id]; ok {
		return true
	}
	if o.runs == nil {
		return false
	}
	_, err := o.runs.GetRun(ctx, id)
	return err == nil
}

func (o *Orchestrator) releaseRunID(id string) {
	o.idMu.Lock()
	defer o.idMu.Unlock()
	delete(o.reserved, id)
}

// ParsePlan salvages a plan from planner output. Output without a JSON
// object, or one naming neither a tech stack nor files, yields the default
// single-technology plan.
func ParsePlan(raw, tech, fileName string) domain.Plan {
	var obj map[string]any
	if err := salvage.DecodeObject(raw, &obj); err != nil {
		logger.Warn("orchestrator: plan fallback: %v", fmt.Errorf("%w: %w", domain.ErrParseFailure, err))
		return domain.DefaultPlan(tech, fileName)
	}

	plan := domain.Plan{
		TechStack:     stringsOf(obj["tech_stack"]),
		FileStructure: stringsOf(obj["file_structure"]),
		Steps:         stringsOf(obj["steps"]),
		Notes:         stringOf(obj["notes"]),
	}
	if len(plan.TechStack) == 0 && len(plan.FileStructure) == 0 {
		logger.Warn("orchestrator: plan fallback: no tech_stack or file_structure")
		return domain.DefaultPlan(tech, fileName)
	}
	return plan
}

func planTech(p *domain.RequirementProfile) string {
	if len(p.Technologies) > 0 {
		return p.Technologies[0]
	}
	return defaultKnowledgeTech
}

func renderPlan(plan domain.Plan) string {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return strings.Join(plan.Steps, "\n")
	}
	return string(data)
}

// RenderKnowledge formats retrieved examples and rules as generate-stage context.
func RenderKnowledge(k domain.KnowledgeContext) string {
	if len(k.Items) == 0 && len(k.Rules) == 0 {
		return ""
	}

	var b strings.Builder
	if len(k.Items) > 0 {
		b.WriteString("=== REFERENCE EXAMPLES ===\n")
		for _, hit := range k.Items {
			fmt.Fprintf(&b, "--- %s (relevance %d)\n", hit.Item.Description, hit.Score)
			b.WriteString(hit.Item.Content)
			if !strings.HasSuffix(hit.Item.Content, "\n") {
				b.WriteString("\n")
			}
		}
	}
	if len(k.Rules) > 0 {
		b.WriteString("=== RULES ===\n")
		for _, rule := range k.Rules {
			b.WriteString(rule)
			if !strings.HasSuffix(rule, "\n") {
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}
