package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/gleaner"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gleaner",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gleaner version %s\n", strings.TrimSpace(gleaner.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
