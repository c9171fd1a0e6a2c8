package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/gleaner"
	"github.com/aretw0/gleaner/internal/adapters/sqlite"
	"github.com/aretw0/gleaner/internal/cli"
	"github.com/aretw0/gleaner/internal/config"
	"github.com/aretw0/gleaner/internal/logging"
	"github.com/aretw0/gleaner/internal/testutils"
	"github.com/aretw0/gleaner/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rule = "violation :- moving_disk(V1), disk_below(V2), smaller(V2,V1)."

// fixture writes the puzzle inputs to a temp dir and returns a config whose
// solver is an inline sh script.
func fixture(t *testing.T, script string) *config.Config {
	t.Helper()
	testutils.RequireShell(t)

	cfg := config.Default()
	cfg.Model, cfg.Trajectories = testutils.WriteInputs(t)
	dir := filepath.Dir(cfg.Model)

	cfg.Oracle.Command = "sh"
	cfg.Oracle.Args = []string{"-c", script, "ilasp"}
	cfg.Oracle.Background = filepath.Join(dir, "ilasp_config.lp")
	cfg.Checkpoint.Dir = filepath.Join(dir, "runs")
	return cfg
}

func TestRunInfer_ConstraintFound(t *testing.T) {
	cfg := fixture(t, `grep -q '#neg' "$1" && echo '`+rule+`' || echo UNSATISFIABLE`)
	cfg.RunID = "e2e"
	cfg.Journal = filepath.Join(t.TempDir(), "journal.db")

	result, err := cli.RunInfer(context.Background(), cfg, cli.InferOptions{}, logging.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "e2e", result.RunID)
	assert.Equal(t, domain.StatusConstraintFound, result.Status)
	assert.Equal(t, 1, result.Iterations)
	require.Len(t, result.Constraints, 1)
	require.NotNil(t, result.Response)
	assert.Equal(t, rule, result.Response.Rule)
	require.NotNil(t, result.Verification)
	assert.True(t, result.Verification.Checked)

	// Checkpoint and journal outlive the run.
	_, err = os.Stat(filepath.Join(cfg.Checkpoint.Dir, "e2e.json"))
	assert.NoError(t, err)

	j, err := sqlite.Open(cfg.Journal)
	require.NoError(t, err)
	defer j.Close()
	entries, err := j.Entries(context.Background(), "e2e")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Found)
}

func TestRunInfer_Background(t *testing.T) {
	// The solver only answers when the background fragment leads the program.
	cfg := fixture(t, `head -n 1 "$1" | grep -q '^#modeh' && echo '`+rule+`' || echo UNSATISFIABLE`)
	require.NoError(t, os.WriteFile(cfg.Oracle.Background, []byte("#modeh(violation)."), 0644))

	result, err := cli.RunInfer(context.Background(), cfg, cli.InferOptions{}, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConstraintFound, result.Status)
}

func TestRunInfer_Resume(t *testing.T) {
	cfg := fixture(t, `echo UNSATISFIABLE`)
	cfg.RunID = "resume"
	cfg.MaxIterations = 2

	first, err := cli.RunInfer(context.Background(), cfg, cli.InferOptions{}, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIterationLimit, first.Status)

	// The terminal checkpoint is reported again without new iterations.
	again, err := cli.RunInfer(context.Background(), cfg, cli.InferOptions{}, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, first.Constraints, again.Constraints)

	// --fresh starts over.
	fresh, err := cli.RunInfer(context.Background(), cfg, cli.InferOptions{Fresh: true}, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Iterations)
	assert.Equal(t, first.Constraints, fresh.Constraints, "runs are deterministic")
}

func TestRunInfer_Errors(t *testing.T) {
	t.Run("Invalid config", func(t *testing.T) {
		cfg := fixture(t, "true")
		cfg.MaxIterations = 0
		_, err := cli.RunInfer(context.Background(), cfg, cli.InferOptions{}, logging.NewNop())
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("Missing model", func(t *testing.T) {
		cfg := fixture(t, "true")
		cfg.Model = filepath.Join(t.TempDir(), "missing.npy")
		_, err := cli.RunInfer(context.Background(), cfg, cli.InferOptions{}, logging.NewNop())
		assert.Error(t, err)
	})

	t.Run("Solver crash", func(t *testing.T) {
		cfg := fixture(t, "echo boom >&2; exit 4")
		_, err := cli.RunInfer(context.Background(), cfg, cli.InferOptions{}, logging.NewNop())
		assert.ErrorIs(t, err, domain.ErrOracleFailed)
		assert.ErrorContains(t, err, "exited with code 4")
	})
}

func TestExecute_ExitCodes(t *testing.T) {
	tests := []struct {
		name   string
		script string
		max    int
		want   int
	}{
		{"Found", "echo '" + rule + "'", 100, cli.ExitFound},
		{"Iteration limit", "echo UNSATISFIABLE", 2, cli.ExitIterationLimit},
		{"Solver failure", "exit 1", 100, cli.ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fixture(t, tt.script)
			cfg.MaxIterations = tt.max
			cfg.LogLevel = "error"

			var out bytes.Buffer
			code := cli.Execute(cfg, cli.InferOptions{Out: &out, Quiet: true})
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestExecute_JSON(t *testing.T) {
	cfg := fixture(t, "echo '"+rule+"'")
	cfg.LogLevel = "error"

	var out bytes.Buffer
	code := cli.Execute(cfg, cli.InferOptions{Out: &out, JSON: true})
	require.Equal(t, cli.ExitFound, code)

	var result gleaner.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, domain.StatusConstraintFound, result.Status)
	assert.Equal(t, rule, result.Response.Rule)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, cli.ExitCode(domain.StatusConstraintFound, nil))
	assert.Equal(t, 2, cli.ExitCode(domain.StatusExhausted, nil))
	assert.Equal(t, 3, cli.ExitCode(domain.StatusIterationLimit, nil))
	assert.Equal(t, 1, cli.ExitCode(domain.StatusRunning, nil))
	assert.Equal(t, 1, cli.ExitCode(domain.StatusConstraintFound, errors.New("boom")))
}

func TestSignalContext_Cancel(t *testing.T) {
	sc := cli.NewSignalContext(context.Background())
	sc.Cancel()

	select {
	case <-sc.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled")
	}
	assert.Nil(t, sc.Signal())
}

func TestInspect(t *testing.T) {
	cfg := fixture(t, `echo UNSATISFIABLE`)
	cfg.RunID = "saved"
	cfg.MaxIterations = 2
	ctx := context.Background()

	fresh, err := cli.Inspect(ctx, cfg, "")
	require.NoError(t, err)
	first, ok := fresh.Next()
	require.True(t, ok)
	assert.Equal(t, first, fresh.Ranking(1)[0])

	program, ok := fresh.Program()
	require.True(t, ok)
	assert.Contains(t, program, "#pos(")
	assert.Contains(t, program, "#neg(")

	result, err := cli.RunInfer(ctx, cfg, cli.InferOptions{}, logging.NewNop())
	require.NoError(t, err)
	require.Len(t, result.Constraints, 2)
	assert.Equal(t, first.Pair, result.Constraints[0].Pair)

	saved, err := cli.Inspect(ctx, cfg, "saved")
	require.NoError(t, err)
	assert.Equal(t, 2, saved.State.Constraints.Len())
	for _, c := range saved.Ranking(10) {
		assert.False(t, saved.State.Constraints.Contains(c.Pair))
	}

	diagram := saved.Graph()
	assert.Contains(t, diagram, "graph TD")
	assert.Contains(t, diagram, "#d32f2f")
	last, ok := saved.State.Constraints.Last()
	require.True(t, ok)
	assert.Equal(t, result.Constraints[1].Pair, last)
	assert.Contains(t, diagram, fmt.Sprintf("class s%d current;", last.State))

	next := fresh.Graph()
	assert.Contains(t, next, fmt.Sprintf("class s%d current;", first.Pair.State))

	unknown, err := cli.Inspect(ctx, cfg, "unknown")
	require.NoError(t, err)
	assert.Zero(t, unknown.State.Constraints.Len())
}
