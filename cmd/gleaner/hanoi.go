package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/gleaner/internal/adapters/dataset"
	"github.com/aretw0/gleaner/internal/compiler"
	"github.com/aretw0/gleaner/pkg/domain"
	"github.com/aretw0/gleaner/pkg/hanoi"
	"github.com/spf13/cobra"
)

// hanoiCmd generates the inputs of a run for the standard puzzle rules.
var hanoiCmd = &cobra.Command{
	Use:   "hanoi [dir]",
	Short: "Generate a transition model and expert play for the puzzle",
	Long: `Writes the transition model, an optimal expert trajectory and a starter
mode bias for the solver into dir (default: current directory).`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		pegs, _ := cmd.Flags().GetInt("pegs")
		disks, _ := cmd.Flags().GetInt("disks")
		slip, _ := cmd.Flags().GetFloat64("slip")
		from, _ := cmd.Flags().GetInt("from")
		to, _ := cmd.Flags().GetInt("to")
		format, _ := cmd.Flags().GetString("format")

		if err := generate(dir, pegs, disks, slip, from, to, format); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func generate(dir string, pegs, disks int, slip float64, from, to int, format string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	space, err := domain.NewSpace(pegs, disks)
	if err != nil {
		return err
	}
	model, err := hanoi.TransitionModel(space, slip)
	if err != nil {
		return err
	}
	expert, err := hanoi.Solve(space, from, to)
	if err != nil {
		return err
	}

	modelPath := filepath.Join(dir, "T_prob."+format)
	if err := dataset.WriteModel(modelPath, model); err != nil {
		return err
	}
	trajPath := filepath.Join(dir, "expert_trajectories.json")
	if err := dataset.WriteTrajectories(trajPath, []domain.Trajectory{expert}); err != nil {
		return err
	}
	biasPath := filepath.Join(dir, "ilasp_config.lp")
	if _, err := os.Stat(biasPath); os.IsNotExist(err) {
		if err := os.WriteFile(biasPath, []byte(compiler.ModeBias), 0644); err != nil {
			return err
		}
	}

	fmt.Printf("Generated %d states, %d actions and a %d-move expert path in %s\n",
		space.NumStates(), space.NumActions(), len(expert), dir)
	return nil
}

func init() {
	rootCmd.AddCommand(hanoiCmd)

	hanoiCmd.Flags().Int("pegs", 3, "Number of pegs")
	hanoiCmd.Flags().Int("disks", 3, "Number of disks")
	hanoiCmd.Flags().Float64("slip", 0, "Probability that a move leaves the state unchanged")
	hanoiCmd.Flags().Int("from", 1, "Peg holding the tower at the start")
	hanoiCmd.Flags().Int("to", 3, "Peg the expert moves the tower to")
	hanoiCmd.Flags().String("format", "npy", "Model format: npy, json or yaml")
}
