package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
)

const sessionExt = ".json"

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore keeps one JSON document per clarification session.
type SessionStore struct {
	mu  sync.Mutex
	dir string
}

// NewSessionStore creates a session store under <home>/dialogs.
// If home is empty, the application home is used.
func NewSessionStore(home string) (*SessionStore, error) {
	root, err := resolveHome(home)
	if err != nil {
		return nil, err
	}
	return &SessionStore{dir: filepath.Join(root, "dialogs")}, nil
}

// Dir returns the directory holding session files.
func (s *SessionStore) Dir() string {
	return s.dir
}

// Save writes the full session.
func (s *SessionStore) Save(_ context.Context, state *domain.DialogState) error {
	if state == nil || !validID(state.SessionID) {
		return domain.ErrInvalidInput
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFileAtomic(s.path(state.SessionID), data, 0o600)
}

// Load reads a session by ID.
func (s *SessionStore) Load(_ context.Context, sessionID string) (*domain.DialogState, error) {
	if !validID(sessionID) {
		return nil, domain.ErrNotFound
	}

	data, err := os.ReadFile(s.path(sessionID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	var state domain.DialogState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", sessionID, err)
	}
	if state.Profile != nil {
		state.Profile.Normalise()
	}
	return &state, nil
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

// List returns session IDs, most recently modified first.
func (s *SessionStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	type session struct {
		id      string
		modTime int64
	}
	sessions := make([]session, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, sessionExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		sessions = append(sessions, session{
			id:      strings.TrimSuffix(name, sessionExt),
			modTime: info.ModTime().UnixNano(),
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].modTime == sessions[j].modTime {
			return sessions[i].id > sessions[j].id
		}
		return sessions[i].modTime > sessions[j].modTime
	})

	ids := make([]string, len(sessions))
	for i, sess := range sessions {
		ids[i] = sess.id
	}
	return ids, nil
}

func (s *SessionStore) path(id string) string {
	return filepath.Join(s.dir, id+sessionExt)
}

// validID rejects IDs that would escape the store directory.
func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}
