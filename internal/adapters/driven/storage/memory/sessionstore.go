package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory implementation of driven.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.DialogState
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.DialogState),
	}
}

// Save stores a copy of the session.
func (s *SessionStore) Save(_ context.Context, state *domain.DialogState) error {
	if state == nil || state.SessionID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[state.SessionID] = copyState(state)
	return nil
}

// Load retrieves a session by ID.
func (s *SessionStore) Load(_ context.Context, sessionID string) (*domain.DialogState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := copyState(&state)
	return &c, nil
}

// Latest returns the most recently updated session.
func (s *SessionStore) Latest(ctx context.Context) (*domain.DialogState, error) {
	ids, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, domain.ErrNotFound
	}
	return s.Load(ctx, ids[0])
}

// List returns session IDs, most recently updated first.
func (s *SessionStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make([]domain.DialogState, 0, len(s.sessions))
	for _, st := range s.sessions {
		states = append(states, st)
	}
	sort.Slice(states, func(i, j int) bool {
		if states[i].UpdatedAt.Equal(states[j].UpdatedAt) {
			return states[i].SessionID > states[j].SessionID
		}
		return states[i].UpdatedAt.After(states[j].UpdatedAt)
	})

	ids := make([]string, len(states))
	for i, st := range states {
		ids[i] = st.SessionID
	}
	return ids, nil
}

func copyState(state *domain.DialogState) domain.DialogState {
	c := *state
	if state.Profile != nil {
		c.Profile = state.Profile.Clone()
	}
	c.History = append([]domain.Message{}, state.History...)
	return c
}
