package runtime_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/gleaner/internal/runtime"
	"github.com/aretw0/gleaner/pkg/domain"
	"github.com/aretw0/gleaner/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toyProblem is a two-state, two-action MDP with a uniform model and a single
// expert transition on pair (0, 0).
func toyProblem(t *testing.T) runtime.Problem {
	t.Helper()
	space, err := domain.NewSpace(2, 1)
	require.NoError(t, err)
	require.Equal(t, 2, space.NumStates())
	require.Equal(t, 2, space.NumActions())

	model := domain.NewTransitionModel(2, 2)
	for s := 0; s < 2; s++ {
		for a := 0; a < 2; a++ {
			model.Set(s, a, 0, 0.5)
			model.Set(s, a, 1, 0.5)
		}
	}
	return runtime.Problem{
		Space: space,
		Model: model,
		Trajectories: []domain.Trajectory{{
			{State: domain.State{1}, Action: "move(1, 2)", Next: domain.State{2}},
		}},
	}
}

// scriptedOracle answers Found on the n-th call (1-based), never when n is 0.
type scriptedOracle struct {
	mu       sync.Mutex
	foundAt  int
	programs []string
}

func (o *scriptedOracle) Induce(_ context.Context, program string) (domain.OracleResponse, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.programs = append(o.programs, program)
	if len(o.programs) == o.foundAt {
		rule := "violation :- moving_disk(V1), disk_below(V2), smaller(V2,V1)."
		return domain.OracleResponse{Found: true, Rule: rule, Raw: rule}, nil
	}
	return domain.OracleResponse{Raw: "UNSATISFIABLE"}, nil
}

func (o *scriptedOracle) calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.programs)
}

type memJournal struct {
	entries []domain.JournalEntry
}

func (j *memJournal) Record(_ context.Context, e domain.JournalEntry) error {
	j.entries = append(j.entries, e)
	return nil
}

type stubVerifier struct {
	rule string
	pos  [][]string
	neg  [][]string
	err  error
}

func (v *stubVerifier) Verify(_ context.Context, rule string, positives, negatives [][]string) (domain.Verification, error) {
	v.rule, v.pos, v.neg = rule, positives, negatives
	if v.err != nil {
		return domain.Verification{}, v.err
	}
	return domain.Verification{Checked: true, Separates: true}, nil
}

func newEngine(t *testing.T, oracle ports.Oracle, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	e, err := runtime.NewEngine(toyProblem(t), oracle, opts...)
	require.NoError(t, err)
	return e
}

func TestNewEngine_Validation(t *testing.T) {
	p := toyProblem(t)
	oracle := &scriptedOracle{}

	_, err := runtime.NewEngine(runtime.Problem{Space: p.Space}, oracle)
	assert.ErrorIs(t, err, domain.ErrInvalidModel)

	_, err = runtime.NewEngine(p, nil)
	assert.Error(t, err)

	bad := p
	bad.Model = domain.NewTransitionModel(3, 2)
	_, err = runtime.NewEngine(bad, oracle)
	assert.ErrorIs(t, err, domain.ErrInvalidModel)

	bad = p
	bad.Trajectories = []domain.Trajectory{{{State: domain.State{3}, Action: "move(1, 2)"}}}
	_, err = runtime.NewEngine(bad, oracle)
	assert.Error(t, err)
}

func TestEngine_Step_FindsRule(t *testing.T) {
	oracle := &scriptedOracle{foundAt: 1}
	e := newEngine(t, oracle)

	start := domain.NewRunState("toy")
	next, err := e.Step(context.Background(), start)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusConstraintFound, next.Status)
	assert.Equal(t, 1, next.Iteration)
	assert.Equal(t, 1, next.Constraints.Len())
	assert.Equal(t, 1, oracle.calls())

	// All four cells tie; (0, 0) is the expert pair, so (0, 1) wins.
	require.NotNil(t, next.Candidate)
	assert.Equal(t, domain.Pair{State: 0, Action: 1}, next.Candidate.Pair)
	assert.Equal(t, domain.State{1}, next.Candidate.State)
	assert.Equal(t, "move(2, 1)", next.Candidate.Action)
	assert.False(t, e.Expert().Contains(next.Candidate.Pair))
	assert.True(t, next.Constraints.Contains(next.Candidate.Pair))

	require.NotNil(t, next.Response)
	assert.Contains(t, next.Response.Rule, "violation")
	assert.Nil(t, next.Verification)

	// The input state is left alone.
	assert.Equal(t, 0, start.Iteration)
	assert.Equal(t, 0, start.Constraints.Len())
	assert.Equal(t, domain.StatusRunning, start.Status)
}

func TestEngine_Step_ProgramLayout(t *testing.T) {
	oracle := &scriptedOracle{foundAt: 1}
	e := newEngine(t, oracle, runtime.WithBackground("#maxv(2)."))

	_, err := e.Step(context.Background(), domain.NewRunState("toy"))
	require.NoError(t, err)
	require.Equal(t, 1, oracle.calls())

	lines := strings.Split(oracle.programs[0], "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "#maxv(2).", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "#pos({violation}, {}, {"), lines[1])
	assert.Contains(t, lines[1], "moving_disk(none).")
	assert.Contains(t, lines[1], "disk_below(1).")
	assert.True(t, strings.HasPrefix(lines[2], "#neg({violation}, {}, {"), lines[2])
	assert.Contains(t, lines[2], "moving_disk(1).")
	assert.Contains(t, lines[2], "disk_below(none).")
}

func TestEngine_Step_TerminalIsUnchanged(t *testing.T) {
	oracle := &scriptedOracle{}
	e := newEngine(t, oracle)

	done := domain.NewRunState("toy")
	done.Status = domain.StatusExhausted
	next, err := e.Step(context.Background(), done)
	require.NoError(t, err)
	assert.Same(t, done, next)
	assert.Zero(t, oracle.calls())
}

func TestEngine_Step_Cancelled(t *testing.T) {
	e := newEngine(t, &scriptedOracle{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Step(ctx, domain.NewRunState("toy"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_Run_IterationLimit(t *testing.T) {
	oracle := &scriptedOracle{}
	e := newEngine(t, oracle, runtime.WithMaxIterations(2))

	var seen []int
	final, err := e.Run(context.Background(), domain.NewRunState("toy"), func(s *domain.RunState) error {
		seen = append(seen, s.Iteration)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusIterationLimit, final.Status)
	assert.Equal(t, 2, final.Iteration)
	assert.Equal(t, 2, final.Constraints.Len())
	assert.Equal(t, 2, oracle.calls())
	assert.Equal(t, []int{1, 2}, seen)
	require.NotNil(t, final.Candidate, "the last candidate is reported")
}

func TestEngine_Run_Exhausted(t *testing.T) {
	oracle := &scriptedOracle{}
	e := newEngine(t, oracle)

	final, err := e.Run(context.Background(), domain.NewRunState("toy"), nil)
	require.NoError(t, err)

	// Three non-expert pairs become constraints; the fourth iteration finds nothing.
	assert.Equal(t, domain.StatusExhausted, final.Status)
	assert.Equal(t, 4, final.Iteration)
	assert.Equal(t, 3, final.Constraints.Len())
	assert.Equal(t, 3, oracle.calls())
	assert.Nil(t, final.Candidate)
	assert.False(t, final.Constraints.Contains(domain.Pair{State: 0, Action: 0}))
}

func TestEngine_Run_ResumesAtCap(t *testing.T) {
	oracle := &scriptedOracle{}
	e := newEngine(t, oracle, runtime.WithMaxIterations(1))

	state := domain.NewRunState("toy")
	state.Iteration = 1
	final, err := e.Run(context.Background(), state, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIterationLimit, final.Status)
	assert.Zero(t, oracle.calls())
}

func TestEngine_Run_AfterStepError(t *testing.T) {
	e := newEngine(t, &scriptedOracle{})
	stop := errors.New("stop")

	final, err := e.Run(context.Background(), domain.NewRunState("toy"), func(*domain.RunState) error {
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, final.Iteration)
}

func TestEngine_OracleFailure(t *testing.T) {
	boom := errors.New("solver crashed")
	e := newEngine(t, ports.OracleFunc(func(context.Context, string) (domain.OracleResponse, error) {
		return domain.OracleResponse{}, boom
	}))

	start := domain.NewRunState("toy")
	final, err := e.Run(context.Background(), start, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOracleFailed)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "iteration 1")
	assert.Same(t, start, final, "a failed step leaves the last good state")
}

func TestEngine_Hooks(t *testing.T) {
	var events []domain.EventType
	var terminal *domain.TerminateEvent
	hooks := domain.LifecycleHooks{
		OnIteration: func(_ context.Context, e *domain.IterationEvent) {
			events = append(events, e.Type)
		},
		OnCandidate: func(_ context.Context, e *domain.CandidateEvent) {
			events = append(events, e.Type)
		},
		OnOracleCall: func(_ context.Context, e *domain.OracleEvent) {
			events = append(events, e.Type)
			assert.Equal(t, 2, e.Examples)
		},
		OnOracleReturn: func(_ context.Context, e *domain.OracleEvent) {
			events = append(events, e.Type)
			assert.NoError(t, e.Err)
		},
		OnTerminate: func(_ context.Context, e *domain.TerminateEvent) {
			events = append(events, e.Type)
			terminal = e
		},
	}

	e := newEngine(t, &scriptedOracle{foundAt: 2}, runtime.WithLifecycleHooks(hooks))
	_, err := e.Run(context.Background(), domain.NewRunState("hooked"), nil)
	require.NoError(t, err)

	assert.Equal(t, []domain.EventType{
		domain.EventIteration, domain.EventCandidate, domain.EventOracleCall, domain.EventOracleReturn,
		domain.EventIteration, domain.EventCandidate, domain.EventOracleCall, domain.EventOracleReturn,
		domain.EventTerminate,
	}, events)
	require.NotNil(t, terminal)
	assert.Equal(t, "hooked", terminal.RunID)
	assert.Equal(t, 2, terminal.Iteration)
	assert.Equal(t, domain.StatusConstraintFound, terminal.Status)
	assert.Equal(t, 2, terminal.Constraints)
}

func TestEngine_JournalAndVerifier(t *testing.T) {
	journal := &memJournal{}
	verifier := &stubVerifier{}
	e := newEngine(t, &scriptedOracle{foundAt: 2}, runtime.WithJournal(journal), runtime.WithVerifier(verifier))

	final, err := e.Run(context.Background(), domain.NewRunState("j"), nil)
	require.NoError(t, err)

	require.Len(t, journal.entries, 2)
	assert.Equal(t, 1, journal.entries[0].Iteration)
	assert.False(t, journal.entries[0].Found)
	assert.Equal(t, "(1)", journal.entries[0].State)
	assert.Equal(t, "move(2, 1)", journal.entries[0].Action)
	assert.True(t, journal.entries[1].Found)
	assert.NotEmpty(t, journal.entries[1].Rule)

	require.NotNil(t, final.Verification)
	assert.True(t, final.Verification.Separates)
	assert.Equal(t, final.Response.Rule, verifier.rule)
	require.Len(t, verifier.pos, 1)
	require.Len(t, verifier.neg, 1)
	assert.Equal(t, []string{"moving_disk(1)", "disk_below(none)"}, verifier.neg[0])
}

func TestEngine_VerifierErrorIsReported(t *testing.T) {
	verifier := &stubVerifier{err: errors.New("cannot parse")}
	e := newEngine(t, &scriptedOracle{foundAt: 1}, runtime.WithVerifier(verifier))

	final, err := e.Run(context.Background(), domain.NewRunState("v"), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConstraintFound, final.Status)
	require.NotNil(t, final.Verification)
	assert.False(t, final.Verification.Checked)
	assert.Equal(t, "cannot parse", final.Verification.Detail)
}

func TestEngine_Deterministic(t *testing.T) {
	run := func() *domain.RunState {
		e := newEngine(t, &scriptedOracle{})
		final, err := e.Run(context.Background(), domain.NewRunState("d"), nil)
		require.NoError(t, err)
		return final
	}
	a, b := run(), run()
	assert.Equal(t, a.Constraints.Pairs(), b.Constraints.Pairs())
	assert.Equal(t, a.Iteration, b.Iteration)
}

func TestEngine_HorizonOption(t *testing.T) {
	empty := domain.NewConstraintSet()
	base := newEngine(t, &scriptedOracle{}).Visitation(empty)

	zero := newEngine(t, &scriptedOracle{}, runtime.WithHorizon(0)).Visitation(empty)
	assert.Equal(t, base, zero, "zero keeps the default horizon")

	short := newEngine(t, &scriptedOracle{}, runtime.WithHorizon(3)).Visitation(empty)
	assert.InDelta(t, 3.0, short.Sum(), 1e-9)
}
