package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the expert path and the constraints as a diagram",
	Long:  `Outputs a Mermaid diagram (graph TD) of the expert trajectories, the constraints of --run-id and the next candidate.`,
	Run: func(cmd *cobra.Command, args []string) {
		in := inspectRun(cmd)
		fmt.Print(in.Graph())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().String("run-id", "", "Overlay the constraints of this run")
}
