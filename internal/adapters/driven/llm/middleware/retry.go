package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
	"github.com/Yukio-aki/ai-office/internal/logger"
)

const (
	defaultBaseDelay = 500 * time.Millisecond
	maxDelay         = 30 * time.Second
)

// retryable is implemented by provider errors that know whether a repeat
// could succeed, e.g. apiclient.StatusError.
type retryable interface {
	Retryable() bool
}

// retryAfter is implemented by errors carrying a server-requested delay.
type retryAfter interface {
	Delay() time.Duration
}

// Retry repeats failed Generate and Chat calls up to attempts times with
// exponential backoff starting at base. Permanent errors and cancellation
// are returned immediately.
func Retry(attempts int, base time.Duration) Middleware {
	if attempts < 1 {
		attempts = 1
	}
	if base <= 0 {
		base = defaultBaseDelay
	}
	return func(next driven.LLMService) driven.LLMService {
		return &retrying{passthrough: passthrough{next: next}, attempts: attempts, base: base}
	}
}

type retrying struct {
	passthrough
	attempts int
	base     time.Duration
}

func (r *retrying) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return r.do(ctx, func() (string, error) { return r.next.Generate(ctx, prompt, opts) })
}

func (r *retrying) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	return r.do(ctx, func() (string, error) { return r.next.Chat(ctx, messages, opts) })
}

func (r *retrying) do(ctx context.Context, call func() (string, error)) (string, error) {
	var last error
	for attempt := 0; attempt < r.attempts; attempt++ {
		out, err := call()
		if err == nil {
			return out, nil
		}
		last = err
		if Permanent(err) || ctx.Err() != nil || attempt == r.attempts-1 {
			break
		}

		delay := backoff(r.base, attempt, err)
		logger.Debug("llm: attempt %d/%d failed, retrying in %s: %v", attempt+1, r.attempts, delay, err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return "", last
}

// Permanent reports whether err should not be retried.
func Permanent(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var r retryable
	if errors.As(err, &r) {
		return !r.Retryable()
	}
	// Transport errors (refused connection, reset) are worth another try.
	return false
}

func backoff(base time.Duration, attempt int, err error) time.Duration {
	delay := base << attempt
	var ra retryAfter
	if errors.As(err, &ra) && ra.Delay() > delay {
		delay = ra.Delay()
	}
	if delay > maxDelay || delay <= 0 {
		delay = maxDelay
	}
	return delay
}
