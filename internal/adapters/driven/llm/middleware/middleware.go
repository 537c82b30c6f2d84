// Package middleware decorates a driven.LLMService with cross-cutting
// concerns: rate limiting, retries and logging.
package middleware

import (
	"context"

	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
)

// Middleware wraps an LLMService.
type Middleware func(driven.LLMService) driven.LLMService

// Wrap applies middlewares in left-to-right order:
// Wrap(inner, A, B) => A(B(inner)).
func Wrap(inner driven.LLMService, mws ...Middleware) driven.LLMService {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			out = mws[i](out)
		}
	}
	return out
}

// passthrough forwards the methods a middleware does not intercept.
type passthrough struct {
	next driven.LLMService
}

func (p passthrough) ModelName() string { return p.next.ModelName() }

func (p passthrough) Ping(ctx context.Context) error { return p.next.Ping(ctx) }

func (p passthrough) Close() error { return p.next.Close() }
