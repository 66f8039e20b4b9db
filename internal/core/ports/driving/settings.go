package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.Settings, error)

	// Save persists application settings. Secrets are never written.
	Save(settings *domain.Settings) error

	// Validate checks that the providers required for ingestion and answers are configured.
	Validate() error

	// ValidateConnectivity pings the configured embedding and LLM providers.
	ValidateConnectivity(ctx context.Context) error
}
