package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import memories from JSON",
		Long:  "Import episodic memories from a snapshot produced by export. Replaces existing memories unless --merge is given.",
		Args:  cobra.ExactArgs(1),
		Run:   runImport,
	}

	cmd.Flags().Bool("merge", false, "Merge with existing memories instead of replacing them")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	merge, _ := cmd.Flags().GetBool("merge")

	f, err := os.Open(args[0])
	if err != nil {
		exitErr("open snapshot", err)
	}
	defer f.Close()

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	count, err := s.ImportFrom(cmd.Context(), f, merge)
	if err != nil {
		exitErr("import", err)
	}

	action := "imported into"
	if merge {
		action = "merged into"
	}
	fmt.Printf("Imported %d memories (%s agent: %s)\n", count, action, s.AgentID())
}
