package gleaner

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aretw0/gleaner/internal/logging"
	"github.com/aretw0/gleaner/internal/runtime"
	"github.com/aretw0/gleaner/pkg/adapters/memory"
	"github.com/aretw0/gleaner/pkg/domain"
	"github.com/aretw0/gleaner/pkg/ports"
	"github.com/aretw0/gleaner/pkg/session"
	"github.com/google/uuid"
)

// Version is the release of the library and the gleaner binary.
// Release builds override it with -ldflags "-X github.com/aretw0/gleaner.Version=...".
var Version = "0.1.0-dev"

// Problem is the fixed input of a run: the state space, the transition model
// and the expert demonstrations.
type Problem = runtime.Problem

// Constraint is an accepted forbidden pair, described in puzzle terms.
type Constraint struct {
	Pair   domain.Pair  `json:"pair"`
	State  domain.State `json:"state"`
	Action string       `json:"action"`
}

// Result is the outcome of a run.
type Result struct {
	RunID       string        `json:"run_id"`
	Status      domain.Status `json:"status"`
	Iterations  int           `json:"iterations"`
	Constraints []Constraint  `json:"constraints"`

	Candidate    *domain.Candidate      `json:"candidate,omitempty"`
	Response     *domain.OracleResponse `json:"response,omitempty"`
	Verification *domain.Verification   `json:"verification,omitempty"`
	Duration     time.Duration          `json:"duration"`
}

// Solver is the high-level entry point of the library.
// It wraps the inference engine with checkpointing and run locking.
type Solver struct {
	problem  Problem
	engine   *runtime.Engine
	sessions *session.Manager
	logger   *slog.Logger

	store      ports.CheckpointStore
	locker     ports.DistributedLocker
	lockTTL    time.Duration
	engineOpts []runtime.EngineOption

	progress atomic.Pointer[domain.Checkpoint]
}

// Option defines a functional option for configuring the Solver.
type Option func(*Solver)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Solver) {
		s.engineOpts = append(s.engineOpts, runtime.WithLifecycleHooks(hooks))
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Solver) {
		s.logger = logger
	}
}

// WithStore persists a checkpoint after every iteration so that a run can
// resume. Without it checkpoints live in memory for the life of the Solver.
func WithStore(store ports.CheckpointStore) Option {
	return func(s *Solver) {
		s.store = store
	}
}

// WithLocker guards each run ID with a distributed lock held for the whole run.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(s *Solver) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

// WithJournal records one entry per solver call.
func WithJournal(j ports.Journal) Option {
	return func(s *Solver) {
		s.engineOpts = append(s.engineOpts, runtime.WithJournal(j))
	}
}

// WithVerifier re-checks the induced rule before the run reports it.
func WithVerifier(v ports.RuleVerifier) Option {
	return func(s *Solver) {
		s.engineOpts = append(s.engineOpts, runtime.WithVerifier(v))
	}
}

// WithHorizon sets the rollout length of the visitation estimate.
func WithHorizon(h int) Option {
	return func(s *Solver) {
		s.engineOpts = append(s.engineOpts, runtime.WithHorizon(h))
	}
}

// WithMaxIterations caps the number of iterations of a run.
func WithMaxIterations(n int) Option {
	return func(s *Solver) {
		s.engineOpts = append(s.engineOpts, runtime.WithMaxIterations(n))
	}
}

// WithBackground prepends a static fragment to every solver program.
func WithBackground(fragment string) Option {
	return func(s *Solver) {
		s.engineOpts = append(s.engineOpts, runtime.WithBackground(fragment))
	}
}

// New validates the problem and builds a Solver around oracle.
func New(problem Problem, oracle ports.Oracle, opts ...Option) (*Solver, error) {
	s := &Solver{problem: problem}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.store == nil {
		s.store = memory.NewStore()
	}

	engineOpts := append([]runtime.EngineOption{runtime.WithLogger(s.logger)}, s.engineOpts...)
	engine, err := runtime.NewEngine(problem, oracle, engineOpts...)
	if err != nil {
		return nil, err
	}
	s.engine = engine

	sessionOpts := []session.Option{session.WithLogger(s.logger)}
	if s.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(s.locker), session.WithLockTTL(s.lockTTL))
	}
	s.sessions = session.NewManager(s.store, sessionOpts...)
	return s, nil
}

// Run drives a run to a terminal status. An empty runID starts a new run with
// a random ID; an existing runID resumes from its last checkpoint. A run that
// is already terminal is reported without calling the oracle again.
func (s *Solver) Run(ctx context.Context, runID string) (*Result, error) {
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := s.logger.With("run_id", runID)
	start := time.Now()

	var final *domain.RunState
	err := s.sessions.Hold(ctx, runID, func(ctx context.Context, state *domain.RunState, save func(*domain.RunState) error) error {
		s.progress.Store(state.Checkpoint())
		if state.Iteration > 0 {
			logger.Info("resuming run", "iteration", state.Iteration, "constraints", state.Constraints.Len())
		}

		var err error
		final, err = s.engine.Run(ctx, state, func(next *domain.RunState) error {
			s.progress.Store(next.Checkpoint())
			if err := save(next); err != nil {
				return fmt.Errorf("failed to save checkpoint: %w", err)
			}
			return nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	result := s.Describe(final)
	result.Duration = time.Since(start)
	return result, nil
}

// Describe converts a run state into a Result.
func (s *Solver) Describe(state *domain.RunState) *Result {
	pairs := state.Constraints.Pairs()
	constraints := make([]Constraint, len(pairs))
	for i, p := range pairs {
		st, a := s.problem.Space.Describe(p)
		constraints[i] = Constraint{Pair: p, State: st, Action: a.Label()}
	}
	return &Result{
		RunID:        state.RunID,
		Status:       state.Status,
		Iterations:   state.Iteration,
		Constraints:  constraints,
		Candidate:    state.Candidate,
		Response:     state.Response,
		Verification: state.Verification,
	}
}

// Progress returns the checkpoint of the run in flight, or nil before the first run.
func (s *Solver) Progress() *domain.Checkpoint {
	return s.progress.Load()
}

// Sessions returns the checkpoint manager, for listing or deleting runs.
func (s *Solver) Sessions() *session.Manager {
	return s.sessions
}
