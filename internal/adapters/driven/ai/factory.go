// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	anthropicllm "github.com/Yukio-aki/ai-office/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/Yukio-aki/ai-office/internal/adapters/driven/llm/gemini"
	"github.com/Yukio-aki/ai-office/internal/adapters/driven/llm/middleware"
	ollamallm "github.com/Yukio-aki/ai-office/internal/adapters/driven/llm/ollama"
	openaillm "github.com/Yukio-aki/ai-office/internal/adapters/driven/llm/openai"
	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// retryAttempts bounds transport retries per LLM call. Reviewer iterations
// are bounded separately by the complexity level.
const retryAttempts = 3

// fixHint is appended to configuration errors.
const fixHint = "Run 'aioffice settings llm' to fix"

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	LLMService  driven.LLMService
	PromptStore driven.PromptStore // User-customisable role prompts.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, fixHint)
	}

	if svc == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrLLMUnavailable, err, fixHint)
	}

	return svc, nil
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
// This is intended for use by 'settings llm' to validate credentials on configuration.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)

	case domain.AIProviderGemini:
		return createGeminiLLM(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// Decorate wraps svc with logging, transport retries and the configured
// rate limit. Retries sit outside the limiter so each attempt is throttled.
func Decorate(svc driven.LLMService, limits domain.RateLimitSettings) driven.LLMService {
	if svc == nil {
		return nil
	}
	return middleware.Wrap(svc,
		middleware.Logging(),
		middleware.Retry(retryAttempts, 0),
		middleware.RateLimit(limits.RequestsPerSecond, limits.Burst),
	)
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createGeminiLLM creates a Gemini LLM service. Client construction does
// no network I/O, so a background context is enough.
func createGeminiLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return geminillm.NewLLMService(context.Background(), geminillm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
