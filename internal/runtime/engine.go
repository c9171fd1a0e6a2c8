package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/gleaner/internal/compiler"
	"github.com/aretw0/gleaner/internal/irl"
	"github.com/aretw0/gleaner/pkg/domain"
	"github.com/aretw0/gleaner/pkg/ports"
)

// DefaultMaxIterations bounds a run that never finds a rule.
const DefaultMaxIterations = 100

// Problem is the fixed input of an inference run.
type Problem struct {
	Space        *domain.Space
	Model        *domain.TransitionModel
	Trajectories []domain.Trajectory
}

// Engine advances the inference loop one iteration at a time.
// It holds no run state of its own; every Step takes and returns a RunState.
type Engine struct {
	problem   Problem
	expert    domain.ExpertSet
	negatives []compiler.Example
	oracle    ports.Oracle

	verifier      ports.RuleVerifier
	journal       ports.Journal
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
	background    string
	horizon       int
	maxIterations int
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHorizon sets the SVF rollout length. Zero keeps the default.
func WithHorizon(horizon int) EngineOption {
	return func(e *Engine) {
		if horizon > 0 {
			e.horizon = horizon
		}
	}
}

// WithMaxIterations sets the iteration cap.
func WithMaxIterations(n int) EngineOption {
	return func(e *Engine) {
		e.maxIterations = n
	}
}

// WithBackground prepends a static fragment to every solver program.
func WithBackground(fragment string) EngineOption {
	return func(e *Engine) {
		e.background = fragment
	}
}

// WithVerifier re-checks every induced rule before the run reports it.
func WithVerifier(v ports.RuleVerifier) EngineOption {
	return func(e *Engine) {
		e.verifier = v
	}
}

// WithJournal records one entry per solver call.
func WithJournal(j ports.Journal) EngineOption {
	return func(e *Engine) {
		e.journal = j
	}
}

// NewEngine validates the problem and prepares the parts of the solver input
// that do not change between iterations.
func NewEngine(problem Problem, oracle ports.Oracle, opts ...EngineOption) (*Engine, error) {
	if problem.Space == nil || problem.Model == nil {
		return nil, fmt.Errorf("%w: space and transition model are required", domain.ErrInvalidModel)
	}
	if oracle == nil {
		return nil, errors.New("an oracle is required")
	}
	if problem.Model.NumStates() != problem.Space.NumStates() || problem.Model.NumActions() != problem.Space.NumActions() {
		return nil, fmt.Errorf("%w: model shape (%d, %d) does not match space (%d, %d)", domain.ErrInvalidModel,
			problem.Model.NumStates(), problem.Model.NumActions(), problem.Space.NumStates(), problem.Space.NumActions())
	}

	expert, err := domain.BuildExpertSet(problem.Space, problem.Trajectories)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		problem:       problem,
		expert:        expert,
		oracle:        oracle,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		horizon:       irl.SolverHorizon,
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(e)
	}
	_, e.negatives = compiler.Examples(problem.Trajectories, nil)
	return e, nil
}

// MaxIterations returns the iteration cap.
func (e *Engine) MaxIterations() int {
	return e.maxIterations
}

// Expert returns the set of pairs demonstrated by the expert.
func (e *Engine) Expert() domain.ExpertSet {
	return e.expert
}

// Visitation computes the SVF table under the given constraints.
func (e *Engine) Visitation(constraints *domain.ConstraintSet) irl.Table {
	policy := irl.BuildPolicy(e.problem.Model, constraints)
	return irl.Propagate(e.problem.Model, policy, e.horizon)
}

// Candidate describes a pair of the space with its visitation value.
func (e *Engine) Candidate(r irl.Ranked) domain.Candidate {
	s, a := e.problem.Space.Describe(r.Pair)
	return domain.Candidate{Pair: r.Pair, State: s, Action: a.Label(), Value: r.Value}
}

// Program builds the solver input that labels candidates positive and every
// expert transition negative.
func (e *Engine) Program(candidates ...domain.Candidate) compiler.Program {
	positives, _ := compiler.Examples(nil, candidates)
	return compiler.Program{
		Config:    e.background,
		Disks:     e.problem.Space.Disks,
		Positives: positives,
		Negatives: e.negatives,
	}
}

// Step runs one iteration: policy, SVF, candidate selection, then a solver
// call on the extended constraint set. The input state is not modified.
//
// Terminal states are returned unchanged. Solver failures abort the step with
// an error wrapping domain.ErrOracleFailed.
func (e *Engine) Step(ctx context.Context, state *domain.RunState) (*domain.RunState, error) {
	if state.Status.Terminal() {
		return state, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	next := cloneState(state)
	if next.Iteration >= e.maxIterations {
		return e.terminate(ctx, next, domain.StatusIterationLimit), nil
	}
	next.Iteration++
	e.emitIteration(ctx, next)

	svf := e.Visitation(next.Constraints)
	ranked, ok := irl.SelectCandidate(svf, e.expert, next.Constraints)
	if !ok {
		e.logger.InfoContext(ctx, "no unexplained candidate left", "iteration", next.Iteration)
		return e.terminate(ctx, next, domain.StatusExhausted), nil
	}

	candidate := e.Candidate(ranked)
	next.Constraints.Add(candidate.Pair)
	next.Candidate = &candidate
	e.emitCandidate(ctx, next, candidate)

	program := e.Program(candidate)
	e.emitOracleCall(ctx, next, program.Len())

	start := time.Now()
	resp, err := e.oracle.Induce(ctx, program.String())
	duration := time.Since(start)
	e.emitOracleReturn(ctx, next, program.Len(), duration, resp, err)

	if err != nil {
		if !errors.Is(err, domain.ErrOracleFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrOracleFailed, err)
		}
		return nil, fmt.Errorf("iteration %d: %w", next.Iteration, err)
	}
	next.Response = &resp
	e.record(ctx, next, candidate, resp, duration)

	if resp.Found {
		e.verify(ctx, next, program)
		return e.terminate(ctx, next, domain.StatusConstraintFound), nil
	}
	if next.Iteration >= e.maxIterations {
		return e.terminate(ctx, next, domain.StatusIterationLimit), nil
	}
	return next, nil
}

// Run steps until the state is terminal.
// afterStep, when not nil, sees every intermediate and final state; an error
// from it stops the run.
func (e *Engine) Run(ctx context.Context, state *domain.RunState, afterStep func(*domain.RunState) error) (*domain.RunState, error) {
	for !state.Status.Terminal() {
		next, err := e.Step(ctx, state)
		if err != nil {
			return state, err
		}
		state = next
		if afterStep != nil {
			if err := afterStep(state); err != nil {
				return state, err
			}
		}
	}
	return state, nil
}

func (e *Engine) terminate(ctx context.Context, state *domain.RunState, status domain.Status) *domain.RunState {
	state.Status = status
	e.emitTerminate(ctx, state)
	return state
}

func (e *Engine) verify(ctx context.Context, state *domain.RunState, program compiler.Program) {
	if e.verifier == nil {
		return
	}
	positives := make([][]string, len(program.Positives))
	for i, ex := range program.Positives {
		positives[i] = ex.Facts
	}
	negatives := make([][]string, len(program.Negatives))
	for i, ex := range program.Negatives {
		negatives[i] = ex.Facts
	}

	result, err := e.verifier.Verify(ctx, state.Response.Rule, positives, negatives)
	if err != nil {
		e.logger.WarnContext(ctx, "rule verification failed", "iteration", state.Iteration, "error", err)
		result = domain.Verification{Detail: err.Error()}
	}
	state.Verification = &result
}

func (e *Engine) record(ctx context.Context, state *domain.RunState, c domain.Candidate, resp domain.OracleResponse, d time.Duration) {
	if e.journal == nil {
		return
	}
	err := e.journal.Record(ctx, domain.JournalEntry{
		RunID:     state.RunID,
		Iteration: state.Iteration,
		State:     c.State.String(),
		Action:    c.Action,
		Value:     c.Value,
		Found:     resp.Found,
		Rule:      resp.Rule,
		Duration:  d,
	})
	if err != nil {
		e.logger.WarnContext(ctx, "journal write failed", "iteration", state.Iteration, "error", err)
	}
}

func cloneState(src *domain.RunState) *domain.RunState {
	dst := *src
	dst.Constraints = domain.NewConstraintSet(src.Constraints.Pairs()...)
	// Per-iteration results never carry over.
	dst.Candidate, dst.Response, dst.Verification = nil, nil, nil
	return &dst
}
