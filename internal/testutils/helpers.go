package testutils

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/aretw0/gleaner/internal/adapters/dataset"
	"github.com/aretw0/gleaner/pkg/domain"
	"github.com/aretw0/gleaner/pkg/hanoi"
	"github.com/stretchr/testify/require"
)

// Puzzle builds the deterministic model of a pegs x disks puzzle and one
// optimal expert trajectory from peg 1 to the last peg.
// It fails the test immediately on error.
func Puzzle(t *testing.T, pegs, disks int) (*domain.Space, *domain.TransitionModel, []domain.Trajectory) {
	t.Helper()

	space, err := domain.NewSpace(pegs, disks)
	require.NoError(t, err, "Failed to enumerate the state space")
	model, err := hanoi.TransitionModel(space, 0)
	require.NoError(t, err, "Failed to build the transition model")
	expert, err := hanoi.Solve(space, 1, pegs)
	require.NoError(t, err, "Failed to solve the puzzle")

	return space, model, []domain.Trajectory{expert}
}

// WriteInputs stores the 3x3 puzzle as T_prob.npy and expert_trajectories.json
// in a temporary directory and returns both paths.
func WriteInputs(t *testing.T) (modelPath, trajectoriesPath string) {
	t.Helper()

	_, model, trajectories := Puzzle(t, 3, 3)
	dir := t.TempDir()
	modelPath = filepath.Join(dir, "T_prob.npy")
	trajectoriesPath = filepath.Join(dir, "expert_trajectories.json")

	require.NoError(t, dataset.WriteModel(modelPath, model), "Failed to write the model")
	require.NoError(t, dataset.WriteTrajectories(trajectoriesPath, trajectories), "Failed to write the trajectories")
	return modelPath, trajectoriesPath
}

// RequireShell skips tests that drive a solver through sh.
func RequireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
}
