package main

import (
	"fmt"
	"os"
	"strings"

	httpAdapter "github.com/aretw0/gleaner/internal/adapters/http"
	"github.com/aretw0/gleaner/internal/cli"
	"github.com/aretw0/gleaner/internal/config"
	"github.com/spf13/cobra"
)

// inferCmd represents the infer command
var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Run the inference loop until a rule is found",
	Long: `Loads the transition model and the expert trajectories, then alternates
between proposing the most visited unexplained move and asking the solver for a
rule that forbids it.

Exit codes: 0 a rule was found, 2 no candidate was left, 3 the iteration limit
was reached, 1 any error.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		applyFlags(cmd, cfg)

		debug, _ := cmd.Flags().GetBool("debug")
		fresh, _ := cmd.Flags().GetBool("fresh")
		jsonMode, _ := cmd.Flags().GetBool("json")
		quiet, _ := cmd.Flags().GetBool("quiet")
		watchMode, _ := cmd.Flags().GetBool("watch")

		if watchMode && jsonMode {
			fmt.Fprintln(os.Stderr, "Error: --watch and --json cannot be used together.")
			os.Exit(cli.ExitError)
		}

		opts := cli.InferOptions{Fresh: fresh, JSON: jsonMode, Debug: debug, Quiet: quiet, Out: os.Stdout}
		if watchMode {
			os.Exit(cli.RunWatch(cfg, opts))
		}
		os.Exit(cli.Execute(cfg, opts))
	},
}

// applyFlags lets explicitly set flags override the configuration file.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.Model, _ = flags.GetString("model")
	}
	if flags.Changed("trajectories") {
		cfg.Trajectories, _ = flags.GetString("trajectories")
	}
	if flags.Changed("pegs") {
		cfg.Pegs, _ = flags.GetInt("pegs")
	}
	if flags.Changed("disks") {
		cfg.Disks, _ = flags.GetInt("disks")
	}
	if flags.Changed("horizon") {
		cfg.Horizon, _ = flags.GetInt("horizon")
	}
	if flags.Changed("max-iterations") {
		cfg.MaxIterations, _ = flags.GetInt("max-iterations")
	}
	if flags.Changed("run-id") {
		cfg.RunID, _ = flags.GetString("run-id")
	}
	if flags.Changed("solver") {
		cfg.Oracle.Command, _ = flags.GetString("solver")
	}
	if flags.Changed("background") {
		cfg.Oracle.Background, _ = flags.GetString("background")
	}
	if flags.Changed("timeout") {
		cfg.Oracle.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("backend") {
		cfg.Checkpoint.Backend, _ = flags.GetString("backend")
	}
	if flags.Changed("journal") {
		cfg.Journal, _ = flags.GetString("journal")
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr, _ = flags.GetString("metrics-addr")
	}
	if flags.Changed("no-verify") {
		noVerify, _ := flags.GetBool("no-verify")
		cfg.Verify = !noVerify
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
}

func init() {
	rootCmd.AddCommand(inferCmd)

	inferCmd.Flags().String("model", "", "Transition model file (.npy, .json or .yaml)")
	inferCmd.Flags().String("trajectories", "", "Expert trajectories file (.json, .yaml or legacy .txt)")
	inferCmd.Flags().Int("pegs", 3, "Number of pegs")
	inferCmd.Flags().Int("disks", 3, "Number of disks")
	inferCmd.Flags().Int("horizon", 0, "Visitation rollout length")
	inferCmd.Flags().Int("max-iterations", 0, "Give up after this many solver calls")
	inferCmd.Flags().String("run-id", "", "Resume or name a run (random when empty)")
	inferCmd.Flags().String("solver", "", "Induction solver executable")
	inferCmd.Flags().String("background", "", "Static fragment prepended to every solver program")
	inferCmd.Flags().Duration("timeout", 0, "Timeout of a single solver call")
	inferCmd.Flags().String("backend", "", "Checkpoint backend: none, memory, file or redis")
	inferCmd.Flags().String("journal", "", "SQLite file that records every iteration")
	inferCmd.Flags().String("metrics-addr", "", "Serve "+strings.Join(httpAdapter.Routes, ", ")+" on this address")
	inferCmd.Flags().Bool("no-verify", false, "Skip the Datalog re-check of the induced rule")
	inferCmd.Flags().String("log-level", "", "Log level: debug, info, warn or error")
	inferCmd.Flags().Bool("fresh", false, "Discard the checkpoint of --run-id before starting")
	inferCmd.Flags().Bool("json", false, "Print the result as JSON")
	inferCmd.Flags().BoolP("quiet", "q", false, "Suppress the banner and system messages")
	inferCmd.Flags().BoolP("watch", "w", false, "Rerun whenever the model or the trajectories change")

	// Inference is the default action.
	rootCmd.Run = inferCmd.Run
	rootCmd.Flags().AddFlagSet(inferCmd.Flags())
}
