package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/provstats/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the provisioning statistics MCP server",
	Long: `Launch an MCP server that lets AI agents query provisioning statistics and the product catalog.

Transports:
  stdio - one agent per process; its id comes from --agent-id
  http  - streamable HTTP on --listen; each request names its agent in the x-agent-id header.
          Also serves /health/liveness, /health/readiness and /metrics.

Examples:
  # Serve a local agent over stdio
  provstats mcp --agent-id reporting-bot

  # Serve many agents over HTTP with permissions from a file
  provstats mcp --transport http --listen :8080 --acl-file acl.yaml`,
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		mcp.Version = version
		s := mcp.NewMCPServer(services.Stats, services.Catalog, log)
		return mcp.StartMCPServer(ctx, cfg, s, backend, log)
	},
}
