package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
	"github.com/Yukio-aki/ai-office/internal/logger"
	"github.com/Yukio-aki/ai-office/internal/salvage"
)

// TraceFileName is the execution trace written into every run directory.
const TraceFileName = "trace.md"

// ArtifactService extracts payloads from stage output and persists them.
type ArtifactService struct {
	store    driven.ArtifactStore
	format   string
	fileName string
}

// NewArtifactService creates an artifact service for the given settings.
func NewArtifactService(store driven.ArtifactStore, cfg domain.ArtifactSettings) *ArtifactService {
	defaults := domain.DefaultAppSettings().Artifacts
	if cfg.Format == "" {
		cfg.Format = defaults.Format
	}
	if cfg.FileName == "" {
		cfg.FileName = defaults.FileName
	}
	return &ArtifactService{store: store, format: cfg.Format, fileName: cfg.FileName}
}

// Extract applies the fence ladder: a block tagged with the artifact
// format, then an untagged fenced block, then the raw text.
func (s *ArtifactService) Extract(raw string) string {
	return salvage.FencedBlock(raw, s.format)
}

// ExtractAndSave writes the extracted payload into the run directory and
// copies it into the projects collection. Returns the run-scoped path.
func (s *ArtifactService) ExtractAndSave(ctx context.Context, raw, runID, projectName string) (string, error) {
	payload := s.Extract(raw)

	path, err := s.store.WriteRunFile(ctx, runID, s.fileName, []byte(payload))
	if err != nil {
		return "", fmt.Errorf("%w: write artifact: %w", domain.ErrPersistence, err)
	}

	key := runID
	if projectName != "" {
		key = projectName + "_" + runID
	}
	copied, err := s.store.CopyToProjects(ctx, runID, s.fileName, key)
	if err != nil {
		return path, fmt.Errorf("%w: copy to projects: %w", domain.ErrPersistence, err)
	}

	logger.Info("artifact: saved %s (copy %s)", path, copied)
	return path, nil
}

// WriteTrace renders the run's stage outputs, in order, into the run directory.
func (s *ArtifactService) WriteTrace(ctx context.Context, run *domain.PipelineRun) (string, error) {
	path, err := s.store.WriteRunFile(ctx, run.ID, TraceFileName, []byte(RenderTrace(run)))
	if err != nil {
		return "", fmt.Errorf("%w: write trace: %w", domain.ErrPersistence, err)
	}
	return path, nil
}

// RenderTrace renders a run as Markdown: a header, then one section per
// stage output in the order they were produced.
func RenderTrace(run *domain.PipelineRun) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Run %s\n\n", run.ID)
	if run.ProjectName != "" {
		fmt.Fprintf(&b, "- Project: %s\n", run.ProjectName)
	}
	fmt.Fprintf(&b, "- Complexity: L%d %s (%s)\n", run.Complexity.Level, run.Complexity.Name, stageNames(run.Complexity.Stages))
	status := run.Status
	if status == "" {
		status = domain.RunStatusRunning
	}
	fmt.Fprintf(&b, "- Status: %s\n", status)
	if run.Review != "" {
		fmt.Fprintf(&b, "- Review: %s\n", run.Review)
	}
	if run.Error != "" {
		fmt.Fprintf(&b, "- Error: %s\n", run.Error)
	}

	for _, out := range run.Outputs {
		fmt.Fprintf(&b, "\n## %s\n\n", out.Label())
		b.WriteString("````\n")
		b.WriteString(out.Output)
		if !strings.HasSuffix(out.Output, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("````\n")
	}
	return b.String()
}

func stageNames(stages []domain.Stage) string {
	names := make([]string, len(stages))
	for i, st := range stages {
		names[i] = st.String()
	}
	return strings.Join(names, " -> ")
}
