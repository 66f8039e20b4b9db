package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "folio", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_HasVerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)
}

func TestResolveCaller_DefaultsToLocal(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	t.Setenv(TokenEnv, "")

	caller, err := resolveCaller()

	require.NoError(t, err)
	assert.Equal(t, LocalCaller, caller)
}

func TestResolveCaller_FromEnv(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	t.Setenv(TokenEnv, "admin-token")

	caller, err := resolveCaller()

	require.NoError(t, err)
	assert.Equal(t, domain.Caller{ID: 9, Role: domain.RoleAdmin}, caller)
}

func TestResolveCaller_InvalidToken(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	t.Setenv(TokenEnv, "forged")

	_, err := resolveCaller()

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestResolveCaller_TokenWithoutIdentity(t *testing.T) {
	SetServices(Services{})
	t.Setenv(TokenEnv, "anything")

	_, err := resolveCaller()

	assert.ErrorIs(t, err, errNotConfigured)
}

func TestCommands_RequireServices(t *testing.T) {
	SetServices(Services{})
	t.Setenv(TokenEnv, "")

	for _, args := range [][]string{
		{"assistant", "list"},
		{"ask", "1", "question"},
		{"config", "show"},
		{"token", "--user-id", "1"},
	} {
		_, err := execute(t, args...)
		assert.ErrorIs(t, err, errNotConfigured, "%v", args)
	}
}
