// Package gemini provides an LLM service adapter for Google Gemini using
// the official genai SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/Yukio-aki/ai-office/internal/adapters/driven/llm/apiclient"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 120 * time.Second
)

// errNoCandidates is returned when a response carries no text.
var errNoCandidates = errors.New("gemini: no candidates returned")

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL overrides the API endpoint. Empty uses the SDK default.
	BaseURL string

	// Model is the LLM model to use (default: gemini-2.0-flash).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides LLM operations using Gemini.
type LLMService struct {
	cli   *genai.Client
	model string
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: cfg.Timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &LLMService{cli: cli, model: cfg.Model}, nil
}

// Generate produces text completion from a single user prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	messages := []driven.ChatMessage{{Role: "user", Content: prompt}}
	return s.generate(ctx, messages, opts.MaxTokens, opts.Temperature, opts.StopWords)
}

// Chat conducts a multi-turn conversation. System messages become the
// system instruction and "assistant" maps to Gemini's "model" role.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	return s.generate(ctx, messages, opts.MaxTokens, opts.Temperature, nil)
}

func (s *LLMService) generate(
	ctx context.Context,
	messages []driven.ChatMessage,
	maxTokens int,
	temperature float64,
	stop []string,
) (string, error) {
	config := &genai.GenerateContentConfig{StopSequences: stop}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens) //nolint:gosec // bounded by settings validation
	}
	if temperature > 0 {
		config.Temperature = genai.Ptr(float32(temperature))
	}

	var system []*genai.Part
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		part := &genai.Part{Text: msg.Content}
		switch msg.Role {
		case "system":
			system = append(system, part)
		case "assistant":
			contents = append(contents, &genai.Content{Role: "model", Parts: []*genai.Part{part}})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{part}})
		}
	}
	if len(system) > 0 {
		config.SystemInstruction = &genai.Content{Parts: system}
	}

	resp, err := s.cli.Models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errNoCandidates
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return "", errNoCandidates
	}
	return text.String(), nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping fetches the model's metadata, which validates the key without
// running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.cli.Models.Get(ctx, s.model, nil); err != nil {
		return classify(err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}

// classify maps SDK API errors onto apiclient.StatusError so the retry
// middleware treats every provider alike.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &apiclient.StatusError{Provider: "gemini", StatusCode: apiErr.Code, Body: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &apiclient.StatusError{Provider: "gemini", StatusCode: apiErrPtr.Code, Body: apiErrPtr.Message}
	}
	return fmt.Errorf("gemini: %w", err)
}
