package main

import (
	"fmt"
	"os"

	"github.com/aretw0/gleaner/internal/cli"
	"github.com/spf13/cobra"
)

// inspectRun loads the configured problem and the checkpoint named by
// --run-id, exiting on failure.
func inspectRun(cmd *cobra.Command) *cli.Inspection {
	cfg := loadConfig(cmd)
	runID, _ := cmd.Flags().GetString("run-id")

	in, err := cli.Inspect(cmd.Context(), cfg, runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return in
}
