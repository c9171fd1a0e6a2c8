package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// programCmd represents the program command
var programCmd = &cobra.Command{
	Use:   "program",
	Short: "Print the solver input of the next iteration",
	Run: func(cmd *cobra.Command, args []string) {
		in := inspectRun(cmd)

		program, ok := in.Program()
		if !ok {
			fmt.Fprintln(os.Stderr, "No candidate left.")
			os.Exit(2)
		}
		fmt.Println(program)
	},
}

func init() {
	rootCmd.AddCommand(programCmd)

	programCmd.Flags().String("run-id", "", "Apply the constraints of this run")
}
