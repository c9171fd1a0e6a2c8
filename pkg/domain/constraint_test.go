package domain_test

import (
	"testing"

	"github.com/aretw0/gleaner/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstraintSet(t *testing.T) {
	c := domain.NewConstraintSet()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Last()
	assert.False(t, ok)

	first := domain.Pair{State: 4, Action: 1}
	second := domain.Pair{State: 0, Action: 5}

	assert.True(t, c.Add(first))
	assert.True(t, c.Add(second))
	assert.False(t, c.Add(first), "duplicates are ignored")

	assert.Equal(t, []domain.Pair{first, second}, c.Pairs())
	assert.True(t, c.Contains(second))
	assert.False(t, c.Contains(domain.Pair{State: 1, Action: 1}))

	last, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, second, last)

	t.Run("Pairs is a copy", func(t *testing.T) {
		pairs := c.Pairs()
		pairs[0] = domain.Pair{State: 99, Action: 99}
		assert.Equal(t, first, c.Pairs()[0])
	})
}

func TestCheckpoint_RoundTrip(t *testing.T) {
	state := domain.NewRunState("run-1")
	state.Iteration = 2
	state.Constraints.Add(domain.Pair{State: 3, Action: 2})
	state.Constraints.Add(domain.Pair{State: 1, Action: 0})

	restored := state.Checkpoint().Restore()
	assert.Equal(t, "run-1", restored.RunID)
	assert.Equal(t, 2, restored.Iteration)
	assert.Equal(t, domain.StatusRunning, restored.Status)
	assert.Equal(t, state.Constraints.Pairs(), restored.Constraints.Pairs())

	t.Run("Found rule is kept", func(t *testing.T) {
		found := domain.NewRunState("run-2")
		found.Iteration = 1
		found.Status = domain.StatusConstraintFound
		found.Candidate = &domain.Candidate{Pair: domain.Pair{State: 3, Action: 2}, State: domain.State{2, 1}, Action: "move(1, 3)"}
		found.Response = &domain.OracleResponse{Found: true, Rule: "violation :- moving_disk(2)."}

		cp := found.Checkpoint()
		found.Candidate.State[0] = 9
		restored := cp.Restore()
		require.NotNil(t, restored.Candidate)
		assert.Equal(t, domain.State{2, 1}, restored.Candidate.State)
		assert.Equal(t, found.Response, restored.Response)
		assert.Nil(t, restored.Verification)
	})

	t.Run("Running state drops iteration results", func(t *testing.T) {
		running := domain.NewRunState("run-3")
		running.Candidate = &domain.Candidate{Action: "move(1, 2)"}
		running.Response = &domain.OracleResponse{}

		cp := running.Checkpoint()
		assert.Nil(t, cp.Candidate)
		assert.Nil(t, cp.Response)
	})
}

func TestBuildExpertSet(t *testing.T) {
	space, err := domain.NewSpace(3, 3)
	require.NoError(t, err)

	trajectories := []domain.Trajectory{{
		{State: domain.State{1, 1, 1}, Action: "move(1, 3)", Next: domain.State{3, 1, 1}},
		{State: domain.State{3, 1, 1}, Action: "move(1, 2)", Next: domain.State{3, 2, 1}},
	}}
	expert, err := domain.BuildExpertSet(space, trajectories)
	require.NoError(t, err)
	assert.Len(t, expert, 2)

	p, err := space.Pair(domain.State{1, 1, 1}, "move(1, 3)")
	require.NoError(t, err)
	assert.True(t, expert.Contains(p))
	assert.Equal(t, 2, domain.Transitions(trajectories))

	t.Run("Rejects foreign actions", func(t *testing.T) {
		_, err := domain.BuildExpertSet(space, []domain.Trajectory{{
			{State: domain.State{1, 1, 1}, Action: "move(1, 4)"},
		}})
		assert.ErrorIs(t, err, domain.ErrInvalidTrajectory)
	})
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, domain.StatusRunning.Terminal())
	assert.True(t, domain.StatusConstraintFound.Terminal())
	assert.True(t, domain.StatusExhausted.Terminal())
	assert.True(t, domain.StatusIterationLimit.Terminal())
}
