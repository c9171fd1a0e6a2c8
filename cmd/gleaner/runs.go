package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/gleaner/internal/cli"
	"github.com/aretw0/gleaner/pkg/ports"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage saved runs",
	Long:  `List, inspect, and remove the checkpoints kept by the configured backend.`,
}

var runsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all saved runs",
	Run: func(cmd *cobra.Command, args []string) {
		store, done := openStore(cmd)
		defer done()

		runs, err := store.List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing runs: %v\n", err)
			os.Exit(1)
		}

		if len(runs) == 0 {
			fmt.Println("No saved runs found.")
			return
		}

		fmt.Println("Saved Runs:")
		for _, r := range runs {
			fmt.Println("- " + r)
		}
	},
}

var runsInspectCmd = &cobra.Command{
	Use:   "inspect <run-id>",
	Short: "Inspect the checkpoint of a run",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runID := args[0]
		store, done := openStore(cmd)
		defer done()

		cp, err := store.Load(cmd.Context(), runID)
		if err != nil {
			fmt.Printf("Error loading run '%s': %v\n", runID, err)
			os.Exit(1)
		}

		data, err := json.MarshalIndent(cp, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling checkpoint: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(string(data))
	},
}

var runsRmCmd = &cobra.Command{
	Use:   "rm <run-id>...",
	Short: "Remove one or more runs",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, done := openStore(cmd)
		defer done()
		hasError := false

		for _, runID := range args {
			if err := store.Delete(cmd.Context(), runID); err != nil {
				fmt.Printf("Error removing '%s': %v\n", runID, err)
				hasError = true
			} else {
				fmt.Printf("Removed run '%s'\n", runID)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsLsCmd)
	runsCmd.AddCommand(runsInspectCmd)
	runsCmd.AddCommand(runsRmCmd)
}

func openStore(cmd *cobra.Command) (ports.CheckpointStore, func()) {
	cfg := loadConfig(cmd)
	store, closeStore, err := cli.OpenStore(cfg)
	if err != nil {
		fmt.Printf("Error opening checkpoint store: %v\n", err)
		os.Exit(1)
	}
	return store, func() { _ = closeStore() }
}
