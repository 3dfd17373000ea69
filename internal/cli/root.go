// Package cli implements the agentcortex CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	agentcortex "github.com/agentcortex/agentcortex-go"
)

const version = "0.2.0"

var (
	agentID    string
	persistDir string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:     "agentcortex",
	Short:   "Tiered persistent memory for AI agents",
	Long:    "Inspect and manage agentcortex memories: a working window, an episodic SQLite log, and a semantic vector index, persisted per agent namespace.",
	Version: version,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&agentID, "agent-id", "a", "", "Agent namespace (default: $AGENTCORTEX_AGENT_ID or 'default')")
	RootCmd.PersistentFlags().StringVar(&persistDir, "persist-dir", "", "Storage directory (default: $AGENTCORTEX_PERSIST_DIR or ~/.agentcortex)")
}

func getAgentID() string {
	if agentID != "" {
		return agentID
	}
	if env := os.Getenv("AGENTCORTEX_AGENT_ID"); env != "" {
		return env
	}
	return "default"
}

func getPersistDir() string {
	if persistDir != "" {
		return persistDir
	}
	return os.Getenv("AGENTCORTEX_PERSIST_DIR")
}

// openStore opens the store for one-shot commands. Compression and
// dedup are off; the semantic tier stays active when an embedding
// provider is configured, so recall still sees vector matches.
func openStore() (*agentcortex.MemoryStore, error) {
	cfg := agentcortex.DefaultConfig(getAgentID())
	cfg.PersistDir = getPersistDir()
	cfg.AutoCompress = false
	cfg.AutoExtractFacts = false
	cfg.EnableDedup = false
	if err := applyProviders(&cfg, false); err != nil {
		return nil, err
	}
	return agentcortex.Open(cfg)
}

// openFullStore opens the store with every configured capability
// enabled, for the long-running mcp server.
func openFullStore() (*agentcortex.MemoryStore, error) {
	cfg := agentcortex.DefaultConfig(getAgentID())
	cfg.PersistDir = getPersistDir()
	if err := applyProviders(&cfg, true); err != nil {
		return nil, err
	}
	return agentcortex.Open(cfg)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
