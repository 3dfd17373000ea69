package main

import (
	"os"

	"github.com/agentcortex/agentcortex-go/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
