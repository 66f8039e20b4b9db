package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPServeCmd_HasPortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestMCPServeCmd_RequiresResponder(t *testing.T) {
	SetServices(Services{})
	t.Setenv(TokenEnv, "")

	_, err := execute(t, "mcp", "serve")

	assert.ErrorIs(t, err, errNotConfigured)
}

func TestMCPServeCmd_HostDefaultsToLoopback(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("host")
	require.NotNil(t, flag)
	assert.Equal(t, "127.0.0.1", flag.DefValue)
}
