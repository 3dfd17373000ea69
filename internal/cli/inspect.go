package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Display stored memories in a table",
		Run:   runInspect,
	}

	cmd.Flags().IntP("limit", "l", 50, "Max episodic memories to display")

	RootCmd.AddCommand(cmd)
}

const tableWidth = 72

func runInspect(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = 50
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ctx := cmd.Context()
	stats, err := s.Stats(ctx)
	if err != nil {
		exitErr("stats", err)
	}

	fmt.Println()
	fmt.Printf("  agentcortex - agent: %s\n", s.AgentID())
	fmt.Println("  " + strings.Repeat("=", tableWidth))

	fmt.Printf("\n  EPISODIC MEMORY  (%d entries)\n", stats.Episodic.Count)
	fmt.Println("  " + strings.Repeat("-", tableWidth))
	rows, err := s.Episodic().RecallRecent(ctx, limit)
	if err != nil {
		exitErr("inspect", err)
	}
	if len(rows) == 0 {
		fmt.Println("  (empty)")
	} else {
		fmt.Printf("  %-4s %-5s %-22s Content\n", "#", "IMP", "Created")
		fmt.Println("  " + strings.Repeat("-", tableWidth))
		for i, r := range rows {
			fmt.Printf("  %-4d %-5d %-22s %s\n", i+1, r.Importance, fmtTime(r.CreatedAt), truncate(r.Content, 45))
		}
	}

	fmt.Printf("\n  WORKING MEMORY  (%d messages - session-scoped)\n", stats.Working.MessageCount)
	fmt.Println("  " + strings.Repeat("-", tableWidth))
	if stats.Working.MessageCount == 0 {
		fmt.Println("  (empty - working memory is cleared between sessions)")
	} else {
		fmt.Printf("  %d messages  ~%d tokens\n", stats.Working.MessageCount, stats.Working.TokenCount)
	}

	fmt.Printf("\n  SEMANTIC MEMORY  (%d vector embeddings)\n", stats.Semantic.Count)
	fmt.Println("  " + strings.Repeat("-", tableWidth))
	if stats.Semantic.Count == 0 {
		fmt.Println("  (empty or no embedding provider configured)")
	} else {
		fmt.Printf("  %d entries indexed for semantic search\n", stats.Semantic.Count)
	}

	fmt.Println()
}

func fmtTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// truncate fits text into a fixed-width column.
func truncate(text string, width int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	return string(runes[:width-3]) + "..."
}
