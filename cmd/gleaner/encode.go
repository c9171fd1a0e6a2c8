package main

import (
	"fmt"
	"os"

	"github.com/aretw0/gleaner/internal/compiler"
	"github.com/aretw0/gleaner/pkg/domain"
	"github.com/spf13/cobra"
)

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode <state> <action>",
	Short: "Print the facts that describe a move",
	Long: `Encodes a state such as "1,2,3" and an action label such as "move(1, 2)"
into the moving_disk and disk_below facts the solver sees.`,
	Example: `  gleaner encode 3,1,1 "move(1, 2)"`,
	Args:    cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		state, err := domain.ParseState(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, fact := range compiler.Encode(state, args[1]) {
			fmt.Println(fact + ".")
		}
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
}
