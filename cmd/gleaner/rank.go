package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// rankCmd represents the rank command
var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Show the moves the next iteration would consider",
	Long: `Computes the visitation of the constraint-free policy, minus the constraints
already accepted by --run-id, and lists the most visited moves the expert
never makes.`,
	Run: func(cmd *cobra.Command, args []string) {
		top, _ := cmd.Flags().GetInt("top")
		in := inspectRun(cmd)

		ranking := in.Ranking(top)
		if len(ranking) == 0 {
			fmt.Println("No candidate left.")
			return
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RANK\tSTATE\tACTION\tVISITATION")
		for i, c := range ranking {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%.4f\n", i+1, c.State, c.Action, c.Value)
		}
		_ = tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().String("run-id", "", "Apply the constraints of this run")
	rankCmd.Flags().IntP("top", "n", 10, "Number of moves to show")
}
