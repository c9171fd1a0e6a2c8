package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/gleaner/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunCheckpointStoreContract runs a suite of tests to verify that a CheckpointStore
// implementation adheres to the defined interface contract.
func RunCheckpointStoreContract(t *testing.T, store CheckpointStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewRunState(runID)
		state.Iteration = 3
		state.Constraints.Add(domain.Pair{State: 5, Action: 1})
		state.Constraints.Add(domain.Pair{State: 2, Action: 4})

		err := store.Save(ctx, state.Checkpoint())
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, runID, loaded.RunID)
		assert.Equal(t, 3, loaded.Iteration)
		assert.Equal(t, domain.StatusRunning, loaded.Status)
		// Order is part of the contract: it records discovery sequence.
		assert.Equal(t, state.Constraints.Pairs(), loaded.Constraints)
	})

	t.Run("Overwrite", func(t *testing.T) {
		state := domain.NewRunState(runID)
		state.Iteration = 4
		state.Status = domain.StatusExhausted
		require.NoError(t, store.Save(ctx, state.Checkpoint()))

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, 4, loaded.Iteration)
		assert.Equal(t, domain.StatusExhausted, loaded.Status)
		assert.Empty(t, loaded.Constraints)
	})

	t.Run("Found Rule", func(t *testing.T) {
		state := domain.NewRunState(runID)
		state.Iteration = 2
		state.Status = domain.StatusConstraintFound
		state.Constraints.Add(domain.Pair{State: 7, Action: 2})
		state.Candidate = &domain.Candidate{Pair: domain.Pair{State: 7, Action: 2}, State: domain.State{2, 1, 1}, Action: "move(1, 3)", Value: 0.5}
		state.Response = &domain.OracleResponse{Found: true, Rule: "violation :- moving_disk(3).", Raw: "violation :- moving_disk(3)."}
		state.Verification = &domain.Verification{Checked: true, Separates: true}
		require.NoError(t, store.Save(ctx, state.Checkpoint()))

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		restored := loaded.Restore()
		assert.Equal(t, state.Candidate, restored.Candidate)
		assert.Equal(t, state.Response, restored.Response)
		assert.Equal(t, state.Verification, restored.Verification)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, domain.NewRunState(runID).Checkpoint())
		require.NoError(t, err)

		err = store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		_ = store.Save(ctx, domain.NewRunState(id1).Checkpoint())
		_ = store.Save(ctx, domain.NewRunState(id2).Checkpoint())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}
