package ports

import (
	"context"

	"github.com/aretw0/gleaner/pkg/domain"
)

// CheckpointStore defines the interface for persisting run progress.
// This allows a long inference run to stop and resume with the same constraint set.
type CheckpointStore interface {
	// Save persists the checkpoint under its run ID.
	Save(ctx context.Context, checkpoint *domain.Checkpoint) error

	// Load retrieves the checkpoint of a run.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.Checkpoint, error)

	// Delete removes the checkpoint of a run.
	Delete(ctx context.Context, runID string) error

	// List returns the IDs of all saved runs.
	List(ctx context.Context) ([]string, error)
}

// Journal records the history of a run, one entry per iteration.
type Journal interface {
	Record(ctx context.Context, entry domain.JournalEntry) error
}
