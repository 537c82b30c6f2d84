package middleware

import (
	"context"
	"time"

	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
	"github.com/Yukio-aki/ai-office/internal/logger"
)

// Logging records each call's size, latency and outcome at debug level.
func Logging() Middleware {
	return func(next driven.LLMService) driven.LLMService {
		return &logged{passthrough: passthrough{next: next}}
	}
}

type logged struct {
	passthrough
}

func (l *logged) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	start := time.Now()
	out, err := l.next.Generate(ctx, prompt, opts)
	l.log("generate", len(prompt), len(out), start, err)
	return out, err
}

func (l *logged) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	size := 0
	for _, m := range messages {
		size += len(m.Content)
	}
	start := time.Now()
	out, err := l.next.Chat(ctx, messages, opts)
	l.log("chat", size, len(out), start, err)
	return out, err
}

func (l *logged) log(op string, in, out int, start time.Time, err error) {
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		logger.Warn("llm: %s %s failed after %s: %v", l.ModelName(), op, elapsed, err)
		return
	}
	logger.Debug("llm: %s %s %d -> %d bytes in %s", l.ModelName(), op, in, out, elapsed)
}
