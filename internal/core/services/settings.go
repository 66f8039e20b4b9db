package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

var _ driving.SettingsService = (*SettingsService)(nil)

// Keys in config.toml.
//
//nolint:gosec // G101: key names only.
const (
	keyDataDir          = "data_dir"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyStorageProvider  = "storage.provider"
	keyStorageConnStr   = "storage.connection_string"
	keyStorageContainer = "storage.container"
	keyStorageDir       = "storage.dir"
	keyAuthSecret       = "auth.secret_key"
	keyAuthAlgorithm    = "auth.algorithm"
	keyAuthExpiry       = "auth.token_expire_minutes"
	keyVerifyFreshness  = "cache.verify_freshness"
)

// Data directory layout.
const (
	BlobDirName   = "blobs"
	CacheDirName  = "cache"
	WorkDirName   = "work"
	UploadDirName = "uploads"
)

// SettingsService resolves settings from the config store, filling in
// defaults per provider.
type SettingsService struct {
	configStore    driven.ConfigStore
	aiValidator    driven.AIConfigValidator
	defaultDataDir string
}

// NewSettingsService returns a service over configStore. defaultDataDir
// applies when data_dir is unset; aiValidator may be nil.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator, defaultDataDir string) *SettingsService {
	return &SettingsService{
		configStore:    configStore,
		aiValidator:    aiValidator,
		defaultDataDir: defaultDataDir,
	}
}

// Get resolves the current settings. It never fails on bad values; an
// unrecognised provider falls back to the default.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings(s.defaultDataDir)
	dataDir := s.getString(keyDataDir, defaults.DataDir)

	settings := &domain.Settings{
		DataDir: dataDir,
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.configStore.GetString(keyEmbedModel),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.configStore.GetString(keyLLMModel),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Storage: domain.StorageSettings{
			Provider:         s.getStorageProvider(defaults.Storage.Provider),
			ConnectionString: s.configStore.GetString(keyStorageConnStr),
			Container:        s.getString(keyStorageContainer, defaults.Storage.Container),
			Dir:              s.getString(keyStorageDir, filepath.Join(dataDir, BlobDirName)),
		},
		Auth: domain.AuthSettings{
			SecretKey:   s.configStore.GetString(keyAuthSecret),
			Algorithm:   s.getString(keyAuthAlgorithm, defaults.Auth.Algorithm),
			TokenExpiry: defaults.Auth.TokenExpiry,
		},
		Cache: domain.CacheSettings{
			VerifyFreshness: s.getBool(keyVerifyFreshness, defaults.Cache.VerifyFreshness),
		},
	}

	// Models and base URLs default per provider, so a provider switch
	// does not inherit the previous provider's model.
	if settings.Embedding.Model == "" {
		settings.Embedding.Model = defaultEmbeddingModel(settings.Embedding.Provider)
	}
	if settings.LLM.Model == "" {
		settings.LLM.Model = defaultLLMModel(settings.LLM.Provider)
	}
	if settings.LLM.BaseURL == "" && settings.LLM.Provider == domain.AIProviderGemini {
		settings.LLM.BaseURL = domain.DefaultGeminiOpenAIBaseURL
	}
	if minutes := s.configStore.GetInt(keyAuthExpiry); minutes > 0 {
		settings.Auth.TokenExpiry = time.Duration(minutes) * time.Minute
	}

	return settings, nil
}

// Save writes the non-secret fields. Keys, connection strings and the
// signing secret come from the environment only.
func (s *SettingsService) Save(settings *domain.Settings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyDataDir, settings.DataDir},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyStorageProvider, settings.Storage.Provider.String()},
		{keyStorageContainer, settings.Storage.Container},
		{keyStorageDir, settings.Storage.Dir},
		{keyAuthAlgorithm, settings.Auth.Algorithm},
		{keyAuthExpiry, int(settings.Auth.TokenExpiry / time.Minute)},
		{keyVerifyFreshness, settings.Cache.VerifyFreshness},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Validate checks that the providers required for ingestion and answers are configured.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if !settings.Embedding.IsConfigured() {
		errs = append(errs, fmt.Errorf("%w: embedding provider %q needs an API key or is unsupported",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider))
	}
	if !settings.LLM.IsConfigured() {
		errs = append(errs, fmt.Errorf("%w: llm provider %q needs an API key or is unsupported",
			domain.ErrLLMUnavailable, settings.LLM.Provider))
	}
	if !settings.Storage.IsConfigured() {
		errs = append(errs, fmt.Errorf("%w: storage provider %q is missing its location",
			domain.ErrStorageUnavailable, settings.Storage.Provider))
	}
	return errors.Join(errs...)
}

// ValidateConnectivity pings both AI providers and reports every failure.
func (s *SettingsService) ValidateConnectivity(ctx context.Context) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return errors.Join(
		s.aiValidator.ValidateEmbedding(ctx, &settings.Embedding),
		s.aiValidator.ValidateLLM(ctx, &settings.LLM),
	)
}

func (s *SettingsService) getString(key, fallback string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return fallback
}

// getBool distinguishes an explicit false from an unset key.
func (s *SettingsService) getBool(key string, fallback bool) bool {
	if _, set := s.configStore.Get(key); set {
		return s.configStore.GetBool(key)
	}
	return fallback
}

func (s *SettingsService) getProvider(key string, fallback domain.AIProvider) domain.AIProvider {
	return enumOr(s.configStore.GetString(key), fallback, domain.AIProvider.IsValid)
}

func (s *SettingsService) getStorageProvider(fallback domain.StorageProvider) domain.StorageProvider {
	return enumOr(s.configStore.GetString(keyStorageProvider), fallback, domain.StorageProvider.IsValid)
}

// enumOr converts raw to T, or returns fallback when raw is unrecognised.
func enumOr[T ~string](raw string, fallback T, valid func(T) bool) T {
	if v := T(raw); valid(v) {
		return v
	}
	return fallback
}

func defaultEmbeddingModel(p domain.AIProvider) string {
	if p == domain.AIProviderOllama {
		return domain.DefaultOllamaEmbeddingModel
	}
	return domain.DefaultGeminiEmbeddingModel
}

func defaultLLMModel(p domain.AIProvider) string {
	if p == domain.AIProviderOllama {
		return domain.DefaultOllamaLLMModel
	}
	return domain.DefaultGeminiLLMModel
}
