package ai

import (
	"context"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// DefaultPingTimeout bounds each provider check run by 'folio config check'.
const DefaultPingTimeout = 10 * time.Second

// ConfigValidator builds each configured provider, pings it and releases it.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator returns a validator using DefaultPingTimeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: DefaultPingTimeout}
}

// ValidateEmbedding checks that the embedding gateway is reachable.
func (v *ConfigValidator) ValidateEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	svc, err := CreateAndValidateEmbeddingService(ctx, settings)
	if err != nil {
		return err
	}
	return svc.Close()
}

// ValidateLLM checks that the answer generator is reachable.
func (v *ConfigValidator) ValidateLLM(ctx context.Context, settings *domain.LLMSettings) error {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	svc, err := CreateAndValidateLLMService(ctx, settings)
	if err != nil {
		return err
	}
	return svc.Close()
}
