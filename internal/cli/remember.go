package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	agentcortex "github.com/agentcortex/agentcortex-go"
)

func init() {
	cmd := &cobra.Command{
		Use:   "remember [content]",
		Short: "Store a memory",
		Long:  "Store a memory in the episodic and semantic tiers. Content can be a positional arg or piped via stdin.",
		Run:   runRemember,
	}

	cmd.Flags().IntP("importance", "i", agentcortex.DefaultImportance, "Importance 1-10 (10=critical)")
	cmd.Flags().Bool("no-semantic", false, "Skip the semantic index for this memory")

	RootCmd.AddCommand(cmd)
}

func runRemember(cmd *cobra.Command, args []string) {
	importance, _ := cmd.Flags().GetInt("importance")
	noSemantic, _ := cmd.Flags().GetBool("no-semantic")

	// Get content: positional arg first, then check stdin
	var content string
	if len(args) > 0 {
		content = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			content = string(b)
		}
	}
	content = strings.TrimSpace(content)
	if content == "" {
		exitErr("remember", fmt.Errorf("content is required (positional arg or stdin)"))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	opts := []agentcortex.RememberOption{agentcortex.WithImportance(importance)}
	if noSemantic {
		opts = append(opts, agentcortex.WithoutSemantic())
	}
	if err := s.Remember(cmd.Context(), content, opts...); err != nil {
		exitErr("remember", err)
	}

	fmt.Printf("Stored (importance=%d/10): %s\n", importance, truncate(content, 80))
}
