package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose assistants to MCP clients",
	Long:  `Serve your assistants to Model Context Protocol clients such as desktop chat apps.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ask and list_assistants tools",
	Long: `Start the Model Context Protocol server so AI assistants can ask
questions of your folio assistants.

By default, the server communicates over stdio using JSON-RPC. Every tool
call runs as the identity of --token (or FOLIO_TOKEN).

Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default)
  folio mcp serve

  # HTTP mode, reachable from other machines
  folio mcp serve --port 8080 --host 0.0.0.0

Desktop client configuration:
  {
    "mcpServers": {
      "folio": {
        "command": "/path/to/folio",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().String("host", "127.0.0.1", "HTTP bind address")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, _ := cmd.Flags().GetInt("port")
	if err := requireService("responder", responder); err != nil {
		return err
	}
	caller, err := resolveCaller()
	if err != nil {
		return err
	}

	ports := &mcp.Ports{
		Responder:  responder,
		Assistants: assistantService,
		Caller:     caller,
		Version:    version,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port <= 0 {
		return server.Run(cmd.Context())
	}

	host, _ := cmd.Flags().GetString("host")
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	fmt.Fprintf(cmd.OutOrStdout(), "Serving assistants of user %d at http://%s\n", caller.ID, addr)
	return server.RunHTTP(cmd.Context(), addr)
}
