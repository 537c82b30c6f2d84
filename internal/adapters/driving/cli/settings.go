package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the LLM provider, generation limits and housekeeping.

Settings are stored in ~/.aioffice/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used for extraction, generation and review.`,
	RunE:  runSettingsLLM,
}

var settingsHousekeepingCmd = &cobra.Command{
	Use:       "housekeeping <on|off>",
	Short:     "Enable or disable background backups and cleanup",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE:      runSettingsHousekeeping,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsHousekeepingCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		if settings.LLM.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Generation]")
	cmd.Printf("  Max tokens: %d\n", settings.Generation.MaxTokens)
	cmd.Printf("  Temperature: %.2f\n", settings.Generation.Temperature)
	cmd.Printf("  Approval token: %s\n", settings.Generation.ApprovalToken)
	cmd.Println()

	cmd.Println("[Knowledge]")
	dir := settings.Knowledge.Dir
	if dir == "" {
		dir = "(default)"
	}
	cmd.Printf("  Dir: %s\n", dir)
	cmd.Printf("  Top K: %d, max rules: %d\n", settings.Knowledge.TopK, settings.Knowledge.MaxRules)
	cmd.Println()

	cmd.Println("[Artifacts]")
	cmd.Printf("  Format: %s\n", settings.Artifacts.Format)
	cmd.Printf("  File name: %s\n", settings.Artifacts.FileName)
	cmd.Println()

	cmd.Println("[Cache]")
	if settings.Cache.Size > 0 {
		cmd.Printf("  Size: %d, TTL: %s\n", settings.Cache.Size, settings.Cache.TTL)
	} else {
		cmd.Println("  Disabled")
	}
	cmd.Println()

	cmd.Println("[Rate limit]")
	if settings.RateLimit.RequestsPerSecond > 0 {
		cmd.Printf("  %.2f req/s, burst %d\n", settings.RateLimit.RequestsPerSecond, settings.RateLimit.Burst)
	} else {
		cmd.Println("  Unlimited")
	}
	cmd.Println()

	cmd.Println("[Housekeeping]")
	hk := settings.Housekeeping
	if hk.Enabled {
		cmd.Printf("  Enabled: yes\n")
		cmd.Printf("  Backup every: %s\n", hk.GetTaskConfig(domain.TaskIDProjectsBackup).Interval)
		cmd.Printf("  Cleanup every: %s (temp files older than %s)\n",
			hk.GetTaskConfig(domain.TaskIDTempCleanup).Interval, hk.TempMaxAge)
	} else {
		cmd.Printf("  Enabled: no\n")
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'aioffice settings llm' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLMProvider(cmd, reader)
}

func runSettingsHousekeeping(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	var enabled bool
	switch strings.ToLower(args[0]) {
	case "on", "true", "enable":
		enabled = true
	case "off", "false", "disable":
		enabled = false
	default:
		return fmt.Errorf("%w: expected on or off, got %q", domain.ErrInvalidInput, args[0])
	}

	if err := settingsService.SetHousekeeping(enabled); err != nil {
		return fmt.Errorf("failed to update housekeeping: %w", err)
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	cmd.Printf("Housekeeping %s.\n", state)
	return nil
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key (empty keeps the saved key): ")
		apiKey = readPassword(cmd, reader)
		cmd.Println()
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when the command reads a terminal,
// and falls back to a plain line otherwise.
func readPassword(cmd *cobra.Command, reader *bufio.Reader) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
