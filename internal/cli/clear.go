package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	agentcortex "github.com/agentcortex/agentcortex-go"
)

func init() {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear stored memories",
		Long:  "Clear stored memories. Permanent; clears every tier unless --tiers names specific ones.",
		Run:   runClear,
	}

	cmd.Flags().String("tiers", "", "Comma-separated tiers to clear: working, episodic, semantic")

	RootCmd.AddCommand(cmd)
}

func runClear(cmd *cobra.Command, args []string) {
	tiersStr, _ := cmd.Flags().GetString("tiers")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if tiersStr == "" {
		if err := s.Clear(cmd.Context()); err != nil {
			exitErr("clear", err)
		}
		fmt.Println("Cleared all memory tiers (working, episodic, semantic).")
		return
	}

	var names []string
	var tiers []agentcortex.Tier
	for _, t := range strings.Split(tiersStr, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		names = append(names, t)
		tiers = append(tiers, agentcortex.Tier(t))
	}
	if err := s.ClearTiers(cmd.Context(), tiers...); err != nil {
		exitErr("clear", err)
	}
	fmt.Printf("Cleared memory tiers: %s\n", strings.Join(names, ", "))
}
