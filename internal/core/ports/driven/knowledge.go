package driven

import (
	"context"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
)

// KnowledgeCorpus loads the reference corpus. Items whose content file is
// missing or unreadable are skipped, never reported as errors.
type KnowledgeCorpus interface {
	// Load reads the index and every referenced content file.
	Load(ctx context.Context) (*domain.KnowledgeIndex, error)
}

// CorpusWatcher is an optional interface for corpora that can signal changes.
type CorpusWatcher interface {
	// Watch calls onChange after the corpus changes on disk.
	// Blocks until ctx is cancelled.
	Watch(ctx context.Context, onChange func()) error
}
