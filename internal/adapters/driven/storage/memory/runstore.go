package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.PipelineRun
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.PipelineRun),
	}
}

// CreateRun stores a run whose ID is not taken yet.
func (s *RunStore) CreateRun(_ context.Context, run *domain.PipelineRun) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.ID]; ok {
		return domain.ErrAlreadyExists
	}
	s.runs[run.ID] = copyRun(run, true)
	return nil
}

// SaveRun stores or replaces a run.
func (s *RunStore) SaveRun(_ context.Context, run *domain.PipelineRun) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = copyRun(run, true)
	return nil
}

// GetRun retrieves a run by ID.
func (s *RunStore) GetRun(_ context.Context, id string) (*domain.PipelineRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := copyRun(&run, true)
	return &c, nil
}

// ListRuns returns the most recent runs first, without stage outputs.
func (s *RunStore) ListRuns(_ context.Context, limit int) ([]domain.PipelineRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]domain.PipelineRun, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, copyRun(&run, false))
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].ID > runs[j].ID
		}
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// DeleteRun removes a run.
func (s *RunStore) DeleteRun(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, id)
	return nil
}

func copyRun(run *domain.PipelineRun, withOutputs bool) domain.PipelineRun {
	c := *run
	if run.Profile != nil {
		c.Profile = run.Profile.Clone()
	}
	if run.Plan != nil {
		plan := *run.Plan
		c.Plan = &plan
	}
	c.Complexity.Stages = append([]domain.Stage(nil), run.Complexity.Stages...)
	c.Artifact = append([]byte(nil), run.Artifact...)
	if withOutputs {
		c.Outputs = append([]domain.StageOutput{}, run.Outputs...)
	} else {
		c.Outputs = nil
	}
	return c
}
