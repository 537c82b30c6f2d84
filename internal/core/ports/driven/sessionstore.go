package driven

import (
	"context"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
)

// SessionStore persists clarification sessions so a dialog can be resumed.
type SessionStore interface {
	// Save writes the full session (profile snapshot and history).
	Save(ctx context.Context, state *domain.DialogState) error

	// Load reads a session by ID.
	// Returns domain.ErrNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.DialogState, error)

	// Latest returns the most recently updated session.
	// Returns domain.ErrNotFound if there are none.
	Latest(ctx context.Context) (*domain.DialogState, error)

	// List returns session IDs, newest first.
	List(ctx context.Context) ([]string, error)
}
