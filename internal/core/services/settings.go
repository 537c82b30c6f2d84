package services

import (
	"fmt"
	"time"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyMaxTokens         = "generation.max_tokens"
	keyTemperature       = "generation.temperature"
	keyApprovalToken     = "generation.approval_token"
	keyKnowledgeDir      = "knowledge.dir"
	keyKnowledgeTopK     = "knowledge.top_k"
	keyKnowledgeMaxRules = "knowledge.max_rules"
	keyArtifactFormat    = "artifacts.format"
	keyArtifactFileName  = "artifacts.file_name"
	keyCacheSize         = "cache.size"
	keyCacheTTL          = "cache.ttl"
	keyRateLimitRPS      = "rate_limit.rps"
	keyRateLimitBurst    = "rate_limit.burst"
	keySchedulerEnabled  = "scheduler.enabled"
	keyTempMaxAge        = "scheduler.temp_max_age"
)

// schedulerTaskKeys maps task IDs to their config key (underscore version for TOML).
var schedulerTaskKeys = map[string]string{
	domain.TaskIDProjectsBackup: "projects_backup",
	domain.TaskIDTempCleanup:    "temp_cleanup",
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Generation: domain.GenerationSettings{
			MaxTokens:     s.getInt(keyMaxTokens, defaults.Generation.MaxTokens),
			Temperature:   s.getFloat(keyTemperature, defaults.Generation.Temperature),
			ApprovalToken: s.getString(keyApprovalToken, defaults.Generation.ApprovalToken),
		},
		Knowledge: domain.KnowledgeSettings{
			Dir:      s.getString(keyKnowledgeDir, defaults.Knowledge.Dir),
			TopK:     s.getInt(keyKnowledgeTopK, defaults.Knowledge.TopK),
			MaxRules: s.getInt(keyKnowledgeMaxRules, defaults.Knowledge.MaxRules),
		},
		Artifacts: domain.ArtifactSettings{
			Format:   s.getString(keyArtifactFormat, defaults.Artifacts.Format),
			FileName: s.getString(keyArtifactFileName, defaults.Artifacts.FileName),
		},
		Cache: domain.CacheSettings{
			Size: s.getIntAllowZero(keyCacheSize, defaults.Cache.Size),
			TTL:  s.getDuration(keyCacheTTL, defaults.Cache.TTL),
		},
		RateLimit: domain.RateLimitSettings{
			RequestsPerSecond: s.getFloat(keyRateLimitRPS, defaults.RateLimit.RequestsPerSecond),
			Burst:             s.getInt(keyRateLimitBurst, defaults.RateLimit.Burst),
		},
		Housekeeping: s.GetSchedulerConfig(),
	}

	// Local providers fall back to the default endpoint.
	if settings.LLM.BaseURL == "" && settings.LLM.Provider.IsLocal() {
		settings.LLM.BaseURL = defaults.LLM.BaseURL
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.configStore.Set(keyLLMProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	if err := s.configStore.Set(keyMaxTokens, settings.Generation.MaxTokens); err != nil {
		return fmt.Errorf("save max_tokens: %w", err)
	}
	if err := s.configStore.Set(keyTemperature, settings.Generation.Temperature); err != nil {
		return fmt.Errorf("save temperature: %w", err)
	}
	if err := s.configStore.Set(keyApprovalToken, settings.Generation.ApprovalToken); err != nil {
		return fmt.Errorf("save approval_token: %w", err)
	}

	if err := s.configStore.Set(keyKnowledgeDir, settings.Knowledge.Dir); err != nil {
		return fmt.Errorf("save knowledge dir: %w", err)
	}
	if err := s.configStore.Set(keyKnowledgeTopK, settings.Knowledge.TopK); err != nil {
		return fmt.Errorf("save knowledge top_k: %w", err)
	}
	if err := s.configStore.Set(keyKnowledgeMaxRules, settings.Knowledge.MaxRules); err != nil {
		return fmt.Errorf("save knowledge max_rules: %w", err)
	}

	if err := s.configStore.Set(keyArtifactFormat, settings.Artifacts.Format); err != nil {
		return fmt.Errorf("save artifact format: %w", err)
	}
	if err := s.configStore.Set(keyArtifactFileName, settings.Artifacts.FileName); err != nil {
		return fmt.Errorf("save artifact file_name: %w", err)
	}

	if err := s.configStore.Set(keyCacheSize, settings.Cache.Size); err != nil {
		return fmt.Errorf("save cache size: %w", err)
	}
	if err := s.configStore.Set(keyCacheTTL, settings.Cache.TTL.String()); err != nil {
		return fmt.Errorf("save cache ttl: %w", err)
	}

	if err := s.configStore.Set(keyRateLimitRPS, settings.RateLimit.RequestsPerSecond); err != nil {
		return fmt.Errorf("save rate limit rps: %w", err)
	}
	if err := s.configStore.Set(keyRateLimitBurst, settings.RateLimit.Burst); err != nil {
		return fmt.Errorf("save rate limit burst: %w", err)
	}

	return s.saveSchedulerConfig(settings.Housekeeping)
}

func (s *SettingsService) saveSchedulerConfig(cfg domain.SchedulerConfig) error {
	if err := s.configStore.Set(keySchedulerEnabled, cfg.Enabled); err != nil {
		return fmt.Errorf("save scheduler enabled: %w", err)
	}
	if err := s.configStore.Set(keyTempMaxAge, cfg.TempMaxAge.String()); err != nil {
		return fmt.Errorf("save scheduler temp_max_age: %w", err)
	}
	for taskID, configKey := range schedulerTaskKeys {
		taskCfg := cfg.GetTaskConfig(taskID)
		prefix := "scheduler." + configKey + "."
		if err := s.configStore.Set(prefix+"enabled", taskCfg.Enabled); err != nil {
			return fmt.Errorf("save scheduler %s enabled: %w", configKey, err)
		}
		if err := s.configStore.Set(prefix+"interval", taskCfg.Interval.String()); err != nil {
			return fmt.Errorf("save scheduler %s interval: %w", configKey, err)
		}
	}
	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else {
		defaults := domain.DefaultLLMModels()
		if defaultModel, ok := defaults[provider]; ok {
			settings.LLM.Model = defaultModel
		}
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetHousekeeping enables or disables the background scheduler.
func (s *SettingsService) SetHousekeeping(enabled bool) error {
	if err := s.configStore.Set(keySchedulerEnabled, enabled); err != nil {
		return fmt.Errorf("save scheduler enabled: %w", err)
	}
	return nil
}

// Validate checks if current settings are usable for a pipeline run.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider %q is not configured", settings.LLM.Provider)
	}
	if settings.Generation.ApprovalToken == "" {
		return fmt.Errorf("%w: empty approval token", domain.ErrInvalidInput)
	}
	if settings.Knowledge.TopK < 0 || settings.Knowledge.MaxRules < 0 {
		return fmt.Errorf("%w: knowledge limits must not be negative", domain.ErrInvalidInput)
	}
	if settings.Cache.Size > 0 && settings.Cache.TTL <= 0 {
		return fmt.Errorf("%w: cache ttl must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetSchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()

	// Master switch
	if _, exists := s.configStore.Get(keySchedulerEnabled); exists {
		defaults.Enabled = s.configStore.GetBool(keySchedulerEnabled)
	}
	defaults.TempMaxAge = s.getDuration(keyTempMaxAge, defaults.TempMaxAge)

	for taskID, configKey := range schedulerTaskKeys {
		prefix := "scheduler." + configKey + "."

		taskCfg := defaults.TaskConfigs[taskID]

		if _, exists := s.configStore.Get(prefix + "enabled"); exists {
			taskCfg.Enabled = s.configStore.GetBool(prefix + "enabled")
		}

		// Duration string like "45m", "1h"
		taskCfg.Interval = s.getDuration(prefix+"interval", taskCfg.Interval)

		defaults.TaskConfigs[taskID] = taskCfg
	}

	return defaults
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getIntAllowZero treats an explicit zero as a value rather than "unset".
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
