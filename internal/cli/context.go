package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	agentcortex "github.com/agentcortex/agentcortex-go"
)

func init() {
	cmd := &cobra.Command{
		Use:   "context [description]",
		Short: "Build a memory context block",
		Long:  "Build a formatted block of relevant memories ready to inject into a prompt. With a description the block is focused on it; otherwise the most recent memories are used.",
		Run:   runContext,
	}

	cmd.Flags().Int("max-tokens", 500, "Approximate token budget for the block")
	cmd.Flags().IntP("limit", "l", 5, "Max memories to consider")

	RootCmd.AddCommand(cmd)
}

func runContext(cmd *cobra.Command, args []string) {
	maxTokens, _ := cmd.Flags().GetInt("max-tokens")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	opts := []agentcortex.ContextOption{
		agentcortex.WithMaxTokens(maxTokens),
		agentcortex.WithContextLimit(limit),
	}
	if len(args) > 0 {
		opts = append(opts, agentcortex.WithQuery(strings.Join(args, " ")))
	}

	block, err := s.GetContext(cmd.Context(), opts...)
	if err != nil {
		exitErr("context", err)
	}
	if block == "" {
		fmt.Println("No memories stored yet.")
		return
	}
	fmt.Println(block)
}
