package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/gleaner"
	httpAdapter "github.com/aretw0/gleaner/internal/adapters/http"
	"github.com/aretw0/gleaner/internal/config"
	"github.com/aretw0/gleaner/internal/presentation/tui"
)

// Execute runs inference once and returns the process exit code.
func Execute(cfg *config.Config, opts InferOptions) int {
	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	logger := createLogger(opts.Debug, cfg.LogLevel, opts.JSON)

	if !opts.JSON && !opts.Quiet && isTerminal(out) {
		tui.PrintBanner(out, gleaner.Version)
	}

	result, err := RunInfer(sigCtx, cfg, opts, logger)
	if err != nil {
		if isInterrupted(err) && sigCtx.Signal() != nil {
			if !opts.Quiet && !opts.JSON {
				printSystemMessage(out, "Interrupted. Rerun with --run-id to resume.")
			}
		} else {
			logger.Error("Inference failed", "err", err)
		}
		return ExitError
	}

	if err := writeResult(out, result, opts); err != nil {
		logger.Error("Failed to write report", "err", err)
		return ExitError
	}
	return ExitCode(result.Status, nil)
}

// RunInfer wires the configured adapters, runs the loop to a terminal status
// and releases everything before returning. The monitoring server, when
// configured, lives exactly as long as the run.
func RunInfer(ctx context.Context, cfg *config.Config, opts InferOptions, logger *slog.Logger) (*gleaner.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	problem, err := LoadProblem(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Problem loaded",
		"states", problem.Space.NumStates(),
		"actions", problem.Space.NumActions(),
		"trajectories", len(problem.Trajectories),
	)

	w, err := createSolver(cfg, problem, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := w.Close(); err != nil {
			logger.Warn("Failed to release resources", "err", err)
		}
	}()

	if opts.Fresh && cfg.RunID != "" {
		if err := w.solver.Sessions().Delete(ctx, cfg.RunID); err != nil {
			return nil, fmt.Errorf("failed to reset run: %w", err)
		}
		logger.Info("Run reset", "run_id", cfg.RunID)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverDone := make(chan error, 1)
	if cfg.MetricsAddr != "" {
		handler := httpAdapter.NewHandler(w.registry, gleaner.Version, w.solver.Progress)
		go func() {
			serverDone <- httpAdapter.Serve(runCtx, cfg.MetricsAddr, handler, logger)
		}()
	} else {
		serverDone <- nil
	}

	result, runErr := w.solver.Run(runCtx, cfg.RunID)
	cancel()
	if err := <-serverDone; err != nil {
		logger.Warn("Monitoring server failed", "err", err)
	}
	return result, runErr
}

func writeResult(w io.Writer, result *gleaner.Result, opts InferOptions) error {
	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	render := tui.NewRenderer(!isTerminal(w))
	text, err := render(tui.Report(result))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return err
}
