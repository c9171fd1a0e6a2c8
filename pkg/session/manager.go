package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/gleaner/internal/logging"
	"github.com/aretw0/gleaner/pkg/domain"
	"github.com/aretw0/gleaner/pkg/ports"
)

// DefaultLockTTL is the lifetime of a distributed lock when none is configured.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates checkpoint access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.CheckpointStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets how long a distributed lock outlives a crashed holder.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager over the given checkpoint store.
func NewManager(store ports.CheckpointStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu, and call release after unlocking.
func (m *Manager) acquire(runID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[runID]
	if !exists {
		entry = &lockEntry{}
		m.locks[runID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(runID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[runID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, runID)
	}
}

// Load retrieves the saved state of a run.
func (m *Manager) Load(ctx context.Context, runID string) (*domain.RunState, error) {
	var state *domain.RunState
	err := m.WithLock(ctx, runID, func(ctx context.Context) error {
		var err error
		state, err = m.load(ctx, runID)
		return err
	})
	return state, err
}

// LoadOrStart resumes a run from its checkpoint, or starts and saves a fresh one.
func (m *Manager) LoadOrStart(ctx context.Context, runID string) (*domain.RunState, error) {
	var state *domain.RunState
	err := m.WithLock(ctx, runID, func(ctx context.Context) error {
		var err error
		state, err = m.loadOrStart(ctx, runID)
		return err
	})
	return state, err
}

// Save persists the checkpoint of a run.
func (m *Manager) Save(ctx context.Context, state *domain.RunState) error {
	return m.WithLock(ctx, state.RunID, func(ctx context.Context) error {
		return m.store.Save(ctx, state.Checkpoint())
	})
}

// Delete removes the checkpoint of a run.
func (m *Manager) Delete(ctx context.Context, runID string) error {
	return m.WithLock(ctx, runID, func(ctx context.Context) error {
		return m.store.Delete(ctx, runID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying checkpoint store.
func (m *Manager) Store() ports.CheckpointStore {
	return m.store
}

// Hold runs fn with the lock of runID held for its whole duration. fn gets the
// resumed or fresh state and a save function that must be used instead of
// Save, which would deadlock.
func (m *Manager) Hold(ctx context.Context, runID string, fn func(ctx context.Context, state *domain.RunState, save func(*domain.RunState) error) error) error {
	return m.WithLock(ctx, runID, func(ctx context.Context) error {
		state, err := m.loadOrStart(ctx, runID)
		if err != nil {
			return err
		}
		save := func(s *domain.RunState) error {
			return m.store.Save(ctx, s.Checkpoint())
		}
		return fn(ctx, state, save)
	})
}

// WithLock executes a function while holding the lock for the run.
func (m *Manager) WithLock(ctx context.Context, runID string, fn func(context.Context) error) error {
	entry := m.acquire(runID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(runID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, runID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// The run context may be cancelled by now; release regardless.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"run_id", runID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) load(ctx context.Context, runID string) (*domain.RunState, error) {
	cp, err := m.store.Load(ctx, runID)
	if err != nil {
		return nil, err
	}
	return cp.Restore(), nil
}

func (m *Manager) loadOrStart(ctx context.Context, runID string) (*domain.RunState, error) {
	state, err := m.load(ctx, runID)
	if err == nil {
		m.logger.Debug("resuming run", "run_id", runID, "iteration", state.Iteration, "constraints", state.Constraints.Len())
		return state, nil
	}
	if !errors.Is(err, domain.ErrRunNotFound) {
		return nil, fmt.Errorf("failed to check run existence: %w", err)
	}

	state = domain.NewRunState(runID)
	// Persist immediately to reserve the ID.
	if err := m.store.Save(ctx, state.Checkpoint()); err != nil {
		return nil, fmt.Errorf("failed to initialize run: %w", err)
	}
	return state, nil
}
