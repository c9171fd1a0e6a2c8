package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/gleaner"
	"github.com/aretw0/gleaner/internal/config"
	"github.com/aretw0/gleaner/internal/presentation/tui"
	"github.com/fsnotify/fsnotify"
)

// reloadDebounce lets editors finish writing before a rerun starts.
const reloadDebounce = 200 * time.Millisecond

// RunWatch reruns inference whenever the model, the trajectories or the solver
// background file change, until interrupted. It returns the exit code of the
// last completed run.
func RunWatch(cfg *config.Config, opts InferOptions) int {
	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	logger := createLogger(opts.Debug, cfg.LogLevel, false)
	tui.PrintBanner(out, gleaner.Version)

	paths := []string{cfg.Model, cfg.Trajectories}
	if cfg.Oracle.Background != "" {
		paths = append(paths, cfg.Oracle.Background)
	}
	changes, err := watchFiles(sigCtx, paths, reloadDebounce, logger)
	if err != nil {
		logger.Error("Failed to start watcher", "err", err)
		return ExitError
	}
	logger.Info("Starting Watcher", "paths", paths)

	code := ExitError
	for {
		if c, ok := runWatchIteration(sigCtx, cfg, opts, out, logger, changes); ok {
			code = c
		}
		if sigCtx.Err() != nil {
			logger.Info("Stopping watcher (signal received)", "signal", sigCtx.Signal())
			return code
		}
		logger.Info("Watcher restarting")
		// Constraints of a named run were found against the old inputs.
		opts.Fresh = true
	}
}

// runWatchIteration runs once and then blocks until an input changes. A
// change during the run cancels it. ok is false when the run did not finish.
func runWatchIteration(parent context.Context, cfg *config.Config, opts InferOptions, out io.Writer, logger *slog.Logger, changes <-chan string) (int, bool) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	type outcome struct {
		result *gleaner.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := RunInfer(ctx, cfg, opts, logger)
		done <- outcome{result, err}
	}()

	var res outcome
	select {
	case <-parent.Done():
		<-done
		return 0, false
	case name := <-changes:
		printSystemMessage(out, "Change detected in '%s'.", name)
		cancel()
		<-done
		return 0, false
	case res = <-done:
	}

	code := ExitCode(domainStatus(res.result), res.err)
	if res.err != nil {
		if !errors.Is(res.err, context.Canceled) {
			logger.Error("Runtime error", "err", res.err)
		}
	} else if err := writeResult(out, res.result, opts); err != nil {
		logger.Error("Failed to write report", "err", err)
	}

	printSystemMessage(out, "Waiting for changes...")
	select {
	case <-parent.Done():
	case name := <-changes:
		printSystemMessage(out, "Change detected in '%s'.", name)
	}
	return code, true
}

// watchFiles reports the name of any watched file that is written, created
// or replaced. Parent directories are watched so that editors replacing the
// file by rename are seen. Bursts within debounce collapse into one report.
func watchFiles(ctx context.Context, paths []string, debounce time.Duration, logger *slog.Logger) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = watcher.Close()
			return nil, err
		}
		wanted[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	out := make(chan string, 1)
	go func() {
		defer watcher.Close()

		var timer *time.Timer
		var timerC <-chan time.Time
		pending := ""
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				name, err := filepath.Abs(event.Name)
				if err != nil || !wanted[name] {
					continue
				}
				pending = name
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Reset(debounce)
				}
				timerC = timer.C
			case <-timerC:
				timerC = nil
				select {
				case out <- pending:
				default:
					// A reload is already queued.
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Watcher error", "err", err)
			}
		}
	}()
	return out, nil
}
