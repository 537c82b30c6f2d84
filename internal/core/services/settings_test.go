package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yukio-aki/ai-office/internal/adapters/driven/storage/memory"
	"github.com/Yukio-aki/ai-office/internal/core/domain"
)

func TestNewSettingsService(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()
	require.NoError(t, err)
	require.NotNil(t, settings)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.LLM, settings.LLM)
	assert.Equal(t, defaults.Generation, settings.Generation)
	assert.Equal(t, defaults.Knowledge, settings.Knowledge)
	assert.Equal(t, defaults.Artifacts, settings.Artifacts)
	assert.Equal(t, defaults.Cache, settings.Cache)
	assert.Equal(t, defaults.RateLimit, settings.RateLimit)
	assert.Equal(t, defaults.Housekeeping, settings.Housekeeping)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("llm.provider", "anthropic")
	_ = store.Set("llm.model", "claude-3-5-haiku-latest")
	_ = store.Set("llm.api_key", "sk-test")
	_ = store.Set("generation.max_tokens", 2048)
	_ = store.Set("generation.temperature", 0.7)
	_ = store.Set("generation.approval_token", "LGTM")
	_ = store.Set("knowledge.dir", "/srv/knowledge")
	_ = store.Set("knowledge.top_k", 5)
	_ = store.Set("artifacts.format", "python")
	_ = store.Set("artifacts.file_name", "main.py")
	_ = store.Set("cache.size", 0)
	_ = store.Set("cache.ttl", "5m")
	_ = store.Set("rate_limit.rps", 2)
	_ = store.Set("rate_limit.burst", 4)

	settings, err := NewSettingsService(store, nil).Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", settings.LLM.Model)
	assert.Equal(t, "sk-test", settings.LLM.APIKey)
	assert.Empty(t, settings.LLM.BaseURL, "cloud providers keep an empty base URL")
	assert.Equal(t, 2048, settings.Generation.MaxTokens)
	assert.InDelta(t, 0.7, settings.Generation.Temperature, 1e-9)
	assert.Equal(t, "LGTM", settings.Generation.ApprovalToken)
	assert.Equal(t, "/srv/knowledge", settings.Knowledge.Dir)
	assert.Equal(t, 5, settings.Knowledge.TopK)
	assert.Equal(t, "python", settings.Artifacts.Format)
	assert.Equal(t, "main.py", settings.Artifacts.FileName)
	assert.Zero(t, settings.Cache.Size, "an explicit zero disables the cache")
	assert.Equal(t, 5*time.Minute, settings.Cache.TTL)
	assert.InDelta(t, 2.0, settings.RateLimit.RequestsPerSecond, 1e-9)
	assert.Equal(t, 4, settings.RateLimit.Burst)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("llm.provider", "invalid_provider")
	_ = store.Set("cache.ttl", "soon")
	_ = store.Set("scheduler.temp_max_age", "forever")

	settings, err := NewSettingsService(store, nil).Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.LLM.Provider, settings.LLM.Provider)
	assert.Equal(t, defaults.LLM.BaseURL, settings.LLM.BaseURL)
	assert.Equal(t, defaults.Cache.TTL, settings.Cache.TTL)
	assert.Equal(t, defaults.Housekeeping.TempMaxAge, settings.Housekeeping.TempMaxAge)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderGemini, Model: "gemini-2.0-flash", APIKey: "g-key"}
	settings.Generation.MaxTokens = 1000
	settings.Knowledge.MaxRules = 4
	settings.Cache.TTL = time.Hour
	settings.Housekeeping.Enabled = false
	settings.Housekeeping.TempMaxAge = 2 * time.Hour
	settings.Housekeeping.TaskConfigs[domain.TaskIDProjectsBackup] = domain.TaskConfig{Enabled: false, Interval: 12 * time.Hour}

	require.NoError(t, service.Save(&settings))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings.LLM, got.LLM)
	assert.Equal(t, 1000, got.Generation.MaxTokens)
	assert.Equal(t, 4, got.Knowledge.MaxRules)
	assert.Equal(t, time.Hour, got.Cache.TTL)
	assert.False(t, got.Housekeeping.Enabled)
	assert.Equal(t, 2*time.Hour, got.Housekeeping.TempMaxAge)

	backup := got.Housekeeping.GetTaskConfig(domain.TaskIDProjectsBackup)
	assert.False(t, backup.Enabled)
	assert.Equal(t, 12*time.Hour, backup.Interval)
	assert.Equal(t, "12h0m0s", store.GetString("scheduler.projects_backup.interval"))
}

func TestSettingsService_Save_EmptyAPIKeyKeepsStored(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("llm.api_key", "existing")
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	require.NoError(t, service.Save(&settings))

	assert.Equal(t, "existing", store.GetString("llm.api_key"))
}

// Mock config store that always fails on Set
type failingConfigStore struct {
	*memory.ConfigStore
	failOn string
}

func (f *failingConfigStore) Set(key string, value interface{}) error {
	if f.failOn == "" || key == f.failOn {
		return assert.AnError
	}
	return f.ConfigStore.Set(key, value)
}

func TestSettingsService_Save_Errors(t *testing.T) {
	tests := []struct {
		failOn  string
		wantMsg string
	}{
		{"llm.provider", "llm provider"},
		{"llm.model", "llm model"},
		{"generation.max_tokens", "max_tokens"},
		{"knowledge.top_k", "top_k"},
		{"artifacts.file_name", "file_name"},
		{"cache.ttl", "cache ttl"},
		{"rate_limit.rps", "rate limit rps"},
		{"scheduler.enabled", "scheduler enabled"},
		{"scheduler.temp_cleanup.interval", "temp_cleanup interval"},
	}

	for _, tt := range tests {
		t.Run(tt.failOn, func(t *testing.T) {
			store := &failingConfigStore{ConfigStore: memory.NewConfigStore(), failOn: tt.failOn}
			settings := domain.DefaultAppSettings()
			settings.LLM.APIKey = "key"

			err := NewSettingsService(store, nil).Save(&settings)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.ErrorIs(t, err, assert.AnError)
		})
	}
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	tests := []struct {
		name        string
		provider    domain.AIProvider
		model       string
		apiKey      string
		wantModel   string
		wantBaseURL string
	}{
		{
			name:        "ollama keeps local endpoint",
			provider:    domain.AIProviderOllama,
			model:       "qwen2.5-coder",
			wantModel:   "qwen2.5-coder",
			wantBaseURL: "http://localhost:11434",
		},
		{
			name:      "openai default model",
			provider:  domain.AIProviderOpenAI,
			apiKey:    "sk-1",
			wantModel: "gpt-4o-mini",
		},
		{
			name:      "anthropic",
			provider:  domain.AIProviderAnthropic,
			model:     "claude-3-5-sonnet-latest",
			apiKey:    "sk-ant",
			wantModel: "claude-3-5-sonnet-latest",
		},
		{
			name:      "gemini default model",
			provider:  domain.AIProviderGemini,
			apiKey:    "g-key",
			wantModel: "gemini-2.0-flash",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(), nil)

			require.NoError(t, service.SetLLMProvider(tt.provider, tt.model, tt.apiKey))

			settings, err := service.Get()
			require.NoError(t, err)
			assert.Equal(t, tt.provider, settings.LLM.Provider)
			assert.Equal(t, tt.wantModel, settings.LLM.Model)
			assert.Equal(t, tt.wantBaseURL, settings.LLM.BaseURL)
			assert.Equal(t, tt.apiKey, settings.LLM.APIKey)
		})
	}
}

func TestSettingsService_SetLLMProvider_PreservesExistingBaseURL(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("llm.base_url", "http://gpu-box:11434")
	service := NewSettingsService(store, nil)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, "", ""))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "http://gpu-box:11434", settings.LLM.BaseURL)
}

func TestSettingsService_SetLLMProvider_Invalid(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	assert.Error(t, service.SetLLMProvider("invalid", "", ""))
	assert.Error(t, service.SetLLMProvider(domain.AIProviderOpenAI, "gpt-4o", ""), "API key required")
}

func TestSettingsService_SetHousekeeping(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, service.SetHousekeeping(false))
	assert.False(t, service.GetSchedulerConfig().Enabled)

	require.NoError(t, service.SetHousekeeping(true))
	assert.True(t, service.GetSchedulerConfig().Enabled)
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr error
		wantMsg string
	}{
		{name: "defaults are valid"},
		{
			name:    "cloud provider without key",
			values:  map[string]any{"llm.provider": "openai"},
			wantMsg: "not configured",
		},
		{
			name:    "negative top_k",
			values:  map[string]any{"knowledge.top_k": -1},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "cache without ttl",
			values:  map[string]any{"cache.size": 10, "cache.ttl": "0s"},
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			for k, v := range tt.values {
				_ = store.Set(k, v)
			}

			err := NewSettingsService(store, nil).Validate()
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantMsg)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)
	assert.Equal(t, domain.DefaultAppSettings().Generation, service.GetDefaults().Generation)
}

// Mock AIConfigValidator for testing
type mockAIConfigValidator struct {
	llmErr error
	got    *domain.LLMSettings
}

func (m *mockAIConfigValidator) ValidateLLM(settings *domain.LLMSettings) error {
	m.got = settings
	return m.llmErr
}

func TestSettingsService_ValidateLLMConfig_NilValidator(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	// With nil validator, should skip validation (no error)
	assert.NoError(t, service.ValidateLLMConfig())
}

func TestSettingsService_ValidateLLMConfig_Success(t *testing.T) {
	validator := &mockAIConfigValidator{}
	service := NewSettingsService(memory.NewConfigStore(), validator)

	require.NoError(t, service.ValidateLLMConfig())
	require.NotNil(t, validator.got)
	assert.Equal(t, domain.AIProviderOllama, validator.got.Provider)
}

func TestSettingsService_ValidateLLMConfig_Error(t *testing.T) {
	validator := &mockAIConfigValidator{llmErr: assert.AnError}
	service := NewSettingsService(memory.NewConfigStore(), validator)

	assert.ErrorIs(t, service.ValidateLLMConfig(), assert.AnError)
}
