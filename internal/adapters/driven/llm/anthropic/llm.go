// Package anthropic provides an LLM service adapter for the Anthropic
// messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Yukio-aki/ai-office/internal/adapters/driven/llm/apiclient"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-sonnet-latest"
	DefaultTimeout = 120 * time.Second

	// defaultMaxTokens applies when the caller leaves MaxTokens unset;
	// the API requires it.
	defaultMaxTokens = 4096

	anthropicVersion = "2023-06-01"
)

// errNoContent is returned when a 200 response carries no text block.
var errNoContent = errors.New("anthropic: no response content returned")

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the LLM model to use (default: claude-3-5-sonnet-latest).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides LLM operations using the Anthropic API.
type LLMService struct {
	api   *apiclient.Client
	model string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesRequest is the /v1/messages request format.
type messagesRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	StopSeqs    []string  `json:"stop_sequences,omitempty"`
}

// messagesResponse is the /v1/messages response format.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	header := http.Header{}
	header.Set("x-api-key", cfg.APIKey)
	header.Set("anthropic-version", anthropicVersion)

	return &LLMService{
		api:   apiclient.New("anthropic", cfg.BaseURL, cfg.Timeout, header),
		model: cfg.Model,
	}, nil
}

// Generate produces text completion from a single user prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	messages := []driven.ChatMessage{{Role: "user", Content: prompt}}
	return s.send(ctx, messages, opts.MaxTokens, opts.Temperature, opts.StopWords)
}

// Chat conducts a multi-turn conversation. System messages are lifted into
// the request's system field; several are joined in order.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	return s.send(ctx, messages, opts.MaxTokens, opts.Temperature, nil)
}

func (s *LLMService) send(
	ctx context.Context,
	messages []driven.ChatMessage,
	maxTokens int,
	temperature float64,
	stop []string,
) (string, error) {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	req := messagesRequest{
		Model:       s.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		StopSeqs:    stop,
	}

	var system []string
	for _, msg := range messages {
		if msg.Role == "system" {
			system = append(system, msg.Content)
			continue
		}
		req.Messages = append(req.Messages, message{Role: msg.Role, Content: msg.Content})
	}
	req.System = strings.Join(system, "\n\n")

	var resp messagesResponse
	if err := s.api.PostJSON(ctx, "/v1/messages", req, &resp); err != nil {
		return "", err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", errNoContent
	}
	return text.String(), nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks the /v1/models endpoint, which validates the API key without
// running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/v1/models")
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
