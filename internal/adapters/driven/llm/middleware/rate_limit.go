package middleware

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
)

// RateLimit throttles Generate and Chat to rps with the given burst.
// rps <= 0 disables limiting. Ping is not throttled.
func RateLimit(rps float64, burst int) Middleware {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return func(next driven.LLMService) driven.LLMService {
		return &rateLimited{
			passthrough: passthrough{next: next},
			limiter:     rate.NewLimiter(rate.Limit(rps), burst),
		}
	}
}

type rateLimited struct {
	passthrough
	limiter *rate.Limiter
}

func (r *rateLimited) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.next.Generate(ctx, prompt, opts)
}

func (r *rateLimited) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.next.Chat(ctx, messages, opts)
}
