package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// AIConfigValidator validates AI provider configurations by testing
// connectivity to the underlying services.
type AIConfigValidator interface {
	// ValidateEmbedding creates the configured embedding service and pings it.
	ValidateEmbedding(ctx context.Context, config *domain.EmbeddingSettings) error

	// ValidateLLM creates the configured LLM service and pings it.
	ValidateLLM(ctx context.Context, config *domain.LLMSettings) error
}
