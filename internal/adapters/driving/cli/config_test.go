package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Short key", input: "abc123", expected: "****"},
		{name: "Exactly 8 chars", input: "12345678", expected: "****"},
		{name: "Long key", input: "AIza1234567890abcdef", expected: "AIza...cdef"},
		{name: "Empty key", input: "", expected: "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskAPIKey(tt.input))
		})
	}
}

func TestConfigShow(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.Embedding.APIKey = "AIza1234567890abcdef"

	out, err := execute(t, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Data directory: /data")
	assert.Contains(t, out, "Google Gemini (cloud)")
	assert.Contains(t, out, "AIza...cdef")
	assert.NotContains(t, out, "AIza1234567890abcdef")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestConfigShow_Warns(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.validateErr = domain.ErrLLMUnavailable

	out, err := execute(t, "config")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning:")
}

func TestConfigCheck(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		out, err := execute(t, "config", "check")

		require.NoError(t, err)
		assert.Contains(t, out, "Checking provider connectivity... OK")
	})

	t.Run("invalid settings", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		ts.settings.validateErr = domain.ErrEmbeddingUnavailable

		_, err := execute(t, "config", "check")

		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})

	t.Run("unreachable provider", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		ts.settings.connectivityErr = errors.New("ping failed")

		_, err := execute(t, "config", "check")

		assert.ErrorContains(t, err, "ping failed")
	})

	t.Run("offline skips ping", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		ts.settings.connectivityErr = errors.New("ping failed")

		out, err := execute(t, "config", "check", "--offline")

		require.NoError(t, err)
		assert.NotContains(t, out, "connectivity")
	})
}

func TestConfigSet_Saves(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "config", "set", "llm.provider", "ollama")

	require.NoError(t, err)
	require.NotNil(t, ts.settings.saved)
	assert.Equal(t, domain.AIProviderOllama, ts.settings.saved.LLM.Provider)
	assert.Empty(t, ts.settings.saved.LLM.Model, "model resets to the provider default")
}

func TestApplySetting(t *testing.T) {
	s := domain.DefaultSettings("/data")

	require.NoError(t, applySetting(&s, "auth.token_expire_minutes", "90"))
	assert.Equal(t, 90*time.Minute, s.Auth.TokenExpiry)

	require.NoError(t, applySetting(&s, "cache.verify_freshness", "true"))
	assert.True(t, s.Cache.VerifyFreshness)

	require.NoError(t, applySetting(&s, "storage.provider", "azure"))
	assert.Equal(t, domain.StorageProviderAzure, s.Storage.Provider)

	require.NoError(t, applySetting(&s, "embedding.model", "models/text-embedding-004"))
	assert.Equal(t, "models/text-embedding-004", s.Embedding.Model)
}

func TestApplySetting_Rejects(t *testing.T) {
	s := domain.DefaultSettings("/data")

	assert.ErrorIs(t, applySetting(&s, "embedding.provider", "openai"), domain.ErrInvalidInput)
	assert.ErrorIs(t, applySetting(&s, "auth.algorithm", "RS256"), domain.ErrInvalidInput)
	assert.ErrorIs(t, applySetting(&s, "auth.token_expire_minutes", "0"), domain.ErrInvalidInput)
	assert.ErrorContains(t, applySetting(&s, "llm.api_key", "x"), "secret")
	assert.ErrorContains(t, applySetting(&s, "colour", "blue"), "unknown setting")
}
