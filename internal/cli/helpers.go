package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/gleaner"
	"github.com/aretw0/gleaner/internal/logging"
	"github.com/aretw0/gleaner/pkg/domain"
	"golang.org/x/term"
)

// Exit codes of the infer command.
const (
	ExitFound          = 0
	ExitError          = 1
	ExitExhausted      = 2
	ExitIterationLimit = 3
)

// ExitCode maps the outcome of a run to the process exit code.
func ExitCode(status domain.Status, err error) int {
	if err != nil {
		return ExitError
	}
	switch status {
	case domain.StatusConstraintFound:
		return ExitFound
	case domain.StatusExhausted:
		return ExitExhausted
	case domain.StatusIterationLimit:
		return ExitIterationLimit
	}
	return ExitError
}

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger.
// Debug mode forces debug level; otherwise level comes from the config.
func createLogger(debug bool, level string, json bool) *slog.Logger {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	if debug {
		lvl = slog.LevelDebug
	}
	if json {
		return logging.NewWriter(os.Stderr, lvl, true)
	}
	return logging.New(lvl)
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func isInterrupted(err error) bool {
	return err != nil && errors.Is(err, context.Canceled)
}

func domainStatus(r *gleaner.Result) domain.Status {
	if r == nil {
		return ""
	}
	return r.Status
}
