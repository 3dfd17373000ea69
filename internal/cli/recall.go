package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	agentcortex "github.com/agentcortex/agentcortex-go"
)

func init() {
	cmd := &cobra.Command{
		Use:   "recall [query]",
		Short: "Retrieve relevant memories",
		Long:  "Retrieve memories relevant to a query, merging semantic matches with recent episodic entries.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runRecall,
	}

	cmd.Flags().IntP("limit", "l", 5, "Max results")

	RootCmd.AddCommand(cmd)
}

func runRecall(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	memories, err := s.Recall(cmd.Context(), query, agentcortex.WithLimit(limit))
	if err != nil {
		exitErr("recall", err)
	}

	if len(memories) == 0 {
		fmt.Println("No relevant memories found.")
		return
	}
	for i, m := range memories {
		fmt.Printf("%d. [%s] %s\n", i+1, m.Source, m.Content)
	}
}
