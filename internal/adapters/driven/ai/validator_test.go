package ai

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func TestConfigValidator(t *testing.T) {
	ctx := context.Background()
	v := NewConfigValidator()
	up := ollamaServer(t, http.StatusOK)

	assert.NoError(t, v.ValidateEmbedding(ctx, &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: up.URL}))
	assert.NoError(t, v.ValidateLLM(ctx, &domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: up.URL}))

	assert.ErrorIs(t, v.ValidateEmbedding(ctx, &domain.EmbeddingSettings{}), domain.ErrEmbeddingUnavailable)
	assert.ErrorIs(t, v.ValidateLLM(ctx, &domain.LLMSettings{}), domain.ErrLLMUnavailable)
}
