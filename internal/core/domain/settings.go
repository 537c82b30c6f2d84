package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for the LLM capabilities.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// GenerationSettings bounds every Generator and Reviewer call.
type GenerationSettings struct {
	// MaxTokens caps the response length. Zero leaves it to the provider.
	MaxTokens int

	// Temperature is the sampling temperature.
	Temperature float64

	// ApprovalToken is the reviewer's approval signal.
	ApprovalToken string
}

// KnowledgeSettings configures the reference corpus.
type KnowledgeSettings struct {
	// Dir holds index.json or index.yaml and the snippet files.
	Dir string

	// TopK is how many examples are added to the generate prompt.
	TopK int

	// MaxRules is how many rule snippets are added.
	MaxRules int
}

// ArtifactSettings configures the produced artifact.
type ArtifactSettings struct {
	// Format is the fence tag looked for first, e.g. "html".
	Format string

	// FileName is the artifact file name inside a run directory.
	FileName string
}

// CacheSettings configures the orchestrator-owned response cache.
type CacheSettings struct {
	// Size is the maximum number of entries. Zero disables the cache.
	Size int

	// TTL is how long entries live.
	TTL time.Duration
}

// RateLimitSettings throttles outbound LLM calls.
type RateLimitSettings struct {
	// RequestsPerSecond is the sustained rate. Zero disables limiting.
	RequestsPerSecond float64

	// Burst is the maximum burst size.
	Burst int
}

// AppSettings holds all application settings.
type AppSettings struct {
	LLM          LLMSettings
	Generation   GenerationSettings
	Knowledge    KnowledgeSettings
	Artifacts    ArtifactSettings
	Cache        CacheSettings
	RateLimit    RateLimitSettings
	Housekeeping SchedulerConfig
}

// DefaultApprovalToken is the literal the reviewer emits to approve.
const DefaultApprovalToken = "APPROVED"

// DefaultAppSettings returns settings with sensible defaults.
// The LLM provider defaults to a local Ollama instance.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Provider: AIProviderOllama,
			Model:    DefaultLLMModels()[AIProviderOllama],
			BaseURL:  "http://localhost:11434",
		},
		Generation: GenerationSettings{
			MaxTokens:     4096,
			Temperature:   0.2,
			ApprovalToken: DefaultApprovalToken,
		},
		Knowledge: KnowledgeSettings{
			TopK:     2,
			MaxRules: 2,
		},
		Artifacts: ArtifactSettings{
			Format:   "html",
			FileName: "index.html",
		},
		Cache: CacheSettings{
			Size: 64,
			TTL:  30 * time.Minute,
		},
		RateLimit: RateLimitSettings{
			RequestsPerSecond: 0,
			Burst:             1,
		},
		Housekeeping: DefaultSchedulerConfig(),
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-2.0-flash",
	}
}
