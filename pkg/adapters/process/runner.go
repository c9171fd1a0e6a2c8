package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/gleaner/internal/compiler"
	"github.com/aretw0/gleaner/pkg/domain"
)

const waitDelay = 2 * time.Second

// Runner implements ports.Oracle by executing the induction solver as a
// local process. The program is written to a file that is passed as the last
// argument; the solver's standard output is the response.
type Runner struct {
	cfg     OracleConfig
	workDir string
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithConfig replaces the command, arguments, timeout and environment.
// Empty fields keep their defaults.
func WithConfig(cfg OracleConfig) RunnerOption {
	return func(r *Runner) {
		if cfg.Command != "" {
			r.cfg.Command = cfg.Command
		}
		if cfg.Args != nil {
			r.cfg.Args = cfg.Args
		}
		if cfg.Program != "" {
			r.cfg.Program = cfg.Program
		}
		if cfg.Timeout > 0 {
			r.cfg.Timeout = cfg.Timeout
		}
		if cfg.Env != nil {
			r.cfg.Env = cfg.Env
		}
	}
}

// WithWorkDir keeps the program file in dir instead of a throwaway directory.
func WithWorkDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.workDir = dir
	}
}

// NewRunner creates a new solver runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{cfg: DefaultOracleConfig()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Induce writes program, runs the solver and parses its output.
func (r *Runner) Induce(ctx context.Context, program string) (domain.OracleResponse, error) {
	path, cleanup, err := r.writeProgram(program)
	if err != nil {
		return domain.OracleResponse{}, fmt.Errorf("%w: %v", domain.ErrOracleFailed, err)
	}
	defer cleanup()

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, r.cfg.Args...), path)
	cmd := exec.CommandContext(ctx, r.cfg.Command, args...)
	cmd.Dir = r.workDir
	// Children of the solver may hold stdout open after it is killed.
	cmd.WaitDelay = waitDelay

	env := make([]string, 0, len(r.cfg.Env))
	for k, v := range r.cfg.Env {
		env = append(env, k+"="+v)
	}
	cmd.Env = append(cmd.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.OracleResponse{}, fmt.Errorf("%w: %s: %w", domain.ErrOracleFailed, r.cfg.Command, ctxErr)
		}
		msg := strings.TrimSpace(stderr.String())
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return domain.OracleResponse{}, fmt.Errorf("%w: %s exited with code %d: %s",
				domain.ErrOracleFailed, r.cfg.Command, exitErr.ExitCode(), msg)
		}
		return domain.OracleResponse{}, fmt.Errorf("%w: %s: %v", domain.ErrOracleFailed, r.cfg.Command, err)
	}

	return compiler.ParseResponse(stdout.String()), nil
}

// writeProgram stores the program where the solver can read it. Without a
// work dir the file lives in a temp dir removed by cleanup.
func (r *Runner) writeProgram(program string) (string, func(), error) {
	dir := r.workDir
	cleanup := func() {}
	if dir == "" {
		tmp, err := os.MkdirTemp("", "gleaner-oracle-*")
		if err != nil {
			return "", cleanup, fmt.Errorf("failed to create scratch dir: %w", err)
		}
		dir = tmp
		cleanup = func() { _ = os.RemoveAll(tmp) }
	}

	path, err := filepath.Abs(filepath.Join(dir, r.cfg.Program))
	if err != nil {
		cleanup()
		return "", func() {}, err
	}
	if err := os.WriteFile(path, []byte(program), 0644); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("failed to write program: %w", err)
	}
	return path, cleanup, nil
}
