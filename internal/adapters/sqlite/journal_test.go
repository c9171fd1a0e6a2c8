package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/gleaner/internal/adapters/sqlite"
	"github.com/aretw0/gleaner/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_RecordAndEntries(t *testing.T) {
	j, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	defer j.Close()
	ctx := context.Background()

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, j.Record(ctx, domain.JournalEntry{
		RunID: "r1", Iteration: 2, State: "(3, 1, 1)", Action: "move(1, 3)",
		Value: 0.5, Found: true, Rule: "violation :- moving_disk(2).",
		Duration: 1500 * time.Millisecond, CreatedAt: created,
	}))
	require.NoError(t, j.Record(ctx, domain.JournalEntry{
		RunID: "r1", Iteration: 1, State: "(1, 1, 1)", Action: "move(2, 1)", Value: 1.25,
	}))
	require.NoError(t, j.Record(ctx, domain.JournalEntry{RunID: "other", Iteration: 1, State: "x", Action: "y"}))

	entries, err := j.Entries(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, 1, entries[0].Iteration)
	assert.False(t, entries[0].Found)
	assert.Empty(t, entries[0].Rule)
	assert.False(t, entries[0].CreatedAt.IsZero())

	assert.Equal(t, 2, entries[1].Iteration)
	assert.True(t, entries[1].Found)
	assert.Equal(t, "violation :- moving_disk(2).", entries[1].Rule)
	assert.Equal(t, 1500*time.Millisecond, entries[1].Duration)
	assert.True(t, created.Equal(entries[1].CreatedAt))
	assert.InDelta(t, 0.5, entries[1].Value, 1e-12)
}

func TestJournal_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	j, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Record(ctx, domain.JournalEntry{RunID: "r", Iteration: 1, State: "s", Action: "a"}))
	require.NoError(t, j.Close())

	// Reopening keeps previous rows and does not fail migrations.
	j, err = sqlite.Open(path)
	require.NoError(t, err)
	defer j.Close()
	entries, err := j.Entries(ctx, "r")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
