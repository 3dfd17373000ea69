package cli

import (
	"github.com/spf13/cobra"

	"github.com/agentcortex/agentcortex-go/internal/mcpserver"
)

func init() {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve memory tools over MCP (stdio)",
		Long:  "Run an MCP server on stdio exposing remember, recall, get_context, memory_stats, and clear_memory to MCP-compatible coding assistants. Compression and dedup run with whatever providers the environment configures.",
		Run:   runMCP,
	}

	RootCmd.AddCommand(cmd)
}

func runMCP(cmd *cobra.Command, args []string) {
	s, err := openFullStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := mcpserver.Serve(cmd.Context(), s, version); err != nil {
		exitErr("mcp server", err)
	}
}
