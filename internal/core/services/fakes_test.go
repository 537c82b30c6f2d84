package services

import (
	"context"
	"errors"
	"path"
	"sync"
	"time"

	"github.com/Yukio-aki/ai-office/internal/adapters/driven/storage/memory"
	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
)

// --- Test doubles shared by the pipeline service tests ---

// fakeGenerator answers each role with a fixed response and counts calls.
type fakeGenerator struct {
	mu        sync.Mutex
	responses map[string]string
	err       error
	calls     map[string]int
	prompts   map[string][]string
	onRun     func(role string)
}

func newFakeGenerator(responses map[string]string) *fakeGenerator {
	return &fakeGenerator{
		responses: responses,
		calls:     make(map[string]int),
		prompts:   make(map[string][]string),
	}
}

func (g *fakeGenerator) Run(ctx context.Context, role, prompt, extra string) (string, error) {
	g.mu.Lock()
	g.calls[role]++
	g.prompts[role] = append(g.prompts[role], prompt+"\n"+extra)
	hook := g.onRun
	g.mu.Unlock()

	if hook != nil {
		hook(role)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if g.err != nil {
		return "", g.err
	}
	return g.responses[role], nil
}

func (g *fakeGenerator) Calls(role string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[role]
}

// fakeReviewer replays responses in order, repeating the last one.
type fakeReviewer struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
}

func (r *fakeReviewer) Review(_ context.Context, _, _ string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	if len(r.responses) == 0 {
		return "", nil
	}
	i := r.calls - 1
	if i >= len(r.responses) {
		i = len(r.responses) - 1
	}
	return r.responses[i], nil
}

func (r *fakeReviewer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// fakeExtractor maps messages to raw extractor output. Unknown messages get
// the fallback output.
type fakeExtractor struct {
	outputs   map[string]string
	fallback  string
	err       error
	contexts  []string
	onExtract func()
}

func (e *fakeExtractor) Extract(_ context.Context, message, contextJSON string) (string, error) {
	e.contexts = append(e.contexts, contextJSON)
	if e.onExtract != nil {
		e.onExtract()
	}
	if e.err != nil {
		return "", e.err
	}
	if out, ok := e.outputs[message]; ok {
		return out, nil
	}
	return e.fallback, nil
}

// fakeArtifactStore keeps written files in memory.
type fakeArtifactStore struct {
	mu       sync.Mutex
	files    map[string][]byte
	projects map[string][]byte
	writeErr error
	copyErr  error
}

func newFakeArtifactStore() *fakeArtifactStore {
	return &fakeArtifactStore{files: make(map[string][]byte), projects: make(map[string][]byte)}
}

func (s *fakeArtifactStore) WriteRunFile(ctx context.Context, runID, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return "", s.writeErr
	}
	p := s.RunDir(runID) + "/" + name
	s.files[p] = append([]byte(nil), data...)
	return p, nil
}

func (s *fakeArtifactStore) CopyToProjects(_ context.Context, runID, name, projectKey string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.copyErr != nil {
		return "", s.copyErr
	}
	data, ok := s.files[s.RunDir(runID)+"/"+name]
	if !ok {
		return "", domain.ErrNotFound
	}
	p := path.Join("projects", projectKey, name)
	s.projects[p] = data
	return p, nil
}

func (s *fakeArtifactStore) RunDir(runID string) string {
	return path.Join("runs", runID)
}

func (s *fakeArtifactStore) File(p string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[p]
	return string(data), ok
}

// failingRunStore rejects every save.
type failingRunStore struct {
	driven.RunStore
}

func (failingRunStore) CreateRun(context.Context, *domain.PipelineRun) error {
	return errors.New("disk full")
}

func (failingRunStore) SaveRun(context.Context, *domain.PipelineRun) error {
	return errors.New("disk full")
}

func (failingRunStore) GetRun(context.Context, string) (*domain.PipelineRun, error) {
	return nil, domain.ErrNotFound
}

// slowRunStore delays every write, widening the window between choosing a
// run ID and recording it.
type slowRunStore struct {
	*memory.RunStore
	delay time.Duration
}

func (s *slowRunStore) CreateRun(ctx context.Context, run *domain.PipelineRun) error {
	time.Sleep(s.delay)
	return s.RunStore.CreateRun(ctx, run)
}

func (s *slowRunStore) SaveRun(ctx context.Context, run *domain.PipelineRun) error {
	time.Sleep(s.delay)
	return s.RunStore.SaveRun(ctx, run)
}

// fakeCorpus serves a fixed index.
type fakeCorpus struct {
	index *domain.KnowledgeIndex
	err   error
}

func (c *fakeCorpus) Load(context.Context) (*domain.KnowledgeIndex, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.index, nil
}
