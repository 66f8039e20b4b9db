package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

const connectivityTimeout = 15 * time.Second

var configOffline bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View, check and change folio settings.

Secrets (API keys, storage connection strings, the token signing key) are
read from the environment or a .env file and are never written to disk.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate settings and provider connectivity",
	RunE:  runConfigCheck,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Change a non-secret setting.

Keys:
  data_dir
  embedding.provider   gemini | ollama
  embedding.model
  embedding.base_url
  llm.provider         gemini | openai | ollama
  llm.model
  llm.base_url
  storage.provider     azure | filesystem
  storage.container
  storage.dir
  auth.algorithm       HS256 | HS384 | HS512
  auth.token_expire_minutes
  cache.verify_freshness  true | false`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCheckCmd.Flags().BoolVar(&configOffline, "offline", false, "skip provider connectivity checks")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if err := requireService("settings service", settingsService); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()
	cmd.Printf("Data directory: %s\n", settings.DataDir)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", orDefault(settings.Embedding.BaseURL, domain.DefaultOllamaBaseURL))
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", secretStatus(settings.Embedding.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", secretStatus(settings.LLM.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Provider: %s\n", settings.Storage.Provider)
	switch settings.Storage.Provider {
	case domain.StorageProviderAzure:
		cmd.Printf("  Container: %s\n", settings.Storage.Container)
		cmd.Printf("  Connection string: %s\n", secretStatus(settings.Storage.ConnectionString))
	case domain.StorageProviderFilesystem:
		cmd.Printf("  Directory: %s\n", settings.Storage.Dir)
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Storage.IsConfigured()))
	cmd.Println()

	cmd.Println("[Auth]")
	cmd.Printf("  Algorithm: %s\n", settings.Auth.Algorithm)
	cmd.Printf("  Token expiry: %s\n", settings.Auth.TokenExpiry)
	cmd.Printf("  Secret key: %s\n", secretStatus(settings.Auth.SecretKey))
	cmd.Println()

	cmd.Println("[Cache]")
	cmd.Printf("  Verify freshness: %t\n", settings.Cache.VerifyFreshness)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'folio config check' after fixing the environment.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	if err := requireService("settings service", settingsService); err != nil {
		return err
	}

	cmd.Print("Checking settings... ")
	if err := settingsService.Validate(); err != nil {
		cmd.Println("FAILED")
		return err
	}
	cmd.Println("OK")

	if configOffline {
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), connectivityTimeout)
	defer cancel()

	cmd.Print("Checking provider connectivity... ")
	if err := settingsService.ValidateConnectivity(ctx); err != nil {
		cmd.Println("FAILED")
		return err
	}
	cmd.Println("OK")
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := requireService("settings service", settingsService); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := applySetting(settings, args[0], args[1]); err != nil {
		return err
	}
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

// applySetting updates one non-secret field of settings.
//
//nolint:gocyclo // flat key switch
func applySetting(settings *domain.Settings, key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "data_dir":
		settings.DataDir = value
	case "embedding.provider":
		p := domain.AIProvider(value)
		if p != domain.AIProviderGemini && p != domain.AIProviderOllama {
			return fmt.Errorf("%w: embedding.provider must be gemini or ollama", domain.ErrInvalidInput)
		}
		if p != settings.Embedding.Provider {
			settings.Embedding.Model = ""
		}
		settings.Embedding.Provider = p
	case "embedding.model":
		settings.Embedding.Model = value
	case "embedding.base_url":
		settings.Embedding.BaseURL = value
	case "llm.provider":
		p := domain.AIProvider(value)
		if !p.IsValid() {
			return fmt.Errorf("%w: llm.provider must be gemini, openai or ollama", domain.ErrInvalidInput)
		}
		if p != settings.LLM.Provider {
			settings.LLM.Model = ""
			settings.LLM.BaseURL = ""
		}
		settings.LLM.Provider = p
	case "llm.model":
		settings.LLM.Model = value
	case "llm.base_url":
		settings.LLM.BaseURL = value
	case "storage.provider":
		p := domain.StorageProvider(value)
		if !p.IsValid() {
			return fmt.Errorf("%w: storage.provider must be azure or filesystem", domain.ErrInvalidInput)
		}
		settings.Storage.Provider = p
	case "storage.container":
		settings.Storage.Container = value
	case "storage.dir":
		settings.Storage.Dir = value
	case "auth.algorithm":
		switch value {
		case "HS256", "HS384", "HS512":
			settings.Auth.Algorithm = value
		default:
			return fmt.Errorf("%w: auth.algorithm must be HS256, HS384 or HS512", domain.ErrInvalidInput)
		}
	case "auth.token_expire_minutes":
		minutes, err := strconv.Atoi(value)
		if err != nil || minutes <= 0 {
			return fmt.Errorf("%w: auth.token_expire_minutes must be a positive integer", domain.ErrInvalidInput)
		}
		settings.Auth.TokenExpiry = time.Duration(minutes) * time.Minute
	case "cache.verify_freshness":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: cache.verify_freshness must be true or false", domain.ErrInvalidInput)
		}
		settings.Cache.VerifyFreshness = b
	case "embedding.api_key", "llm.api_key", "storage.connection_string", "auth.secret_key":
		return fmt.Errorf("%s is a secret: set it in the environment or a .env file", key)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func secretStatus(value string) string {
	if value == "" {
		return "(not set)"
	}
	return maskAPIKey(value)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
