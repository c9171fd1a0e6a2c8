package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/gleaner"
	"github.com/aretw0/gleaner/internal/config"
	"github.com/aretw0/gleaner/internal/irl"
	"github.com/aretw0/gleaner/internal/presentation/graph"
	"github.com/aretw0/gleaner/internal/runtime"
	"github.com/aretw0/gleaner/pkg/adapters/process"
	"github.com/aretw0/gleaner/pkg/domain"
)

// Inspection is the loop's view of a run between iterations. It never calls
// the solver.
type Inspection struct {
	Problem gleaner.Problem
	State   *domain.RunState
	engine  *runtime.Engine
}

// Inspect loads the problem and the checkpoint of runID. An empty or unknown
// run ID inspects a fresh run with no constraints.
func Inspect(ctx context.Context, cfg *config.Config, runID string) (*Inspection, error) {
	problem, err := LoadProblem(cfg)
	if err != nil {
		return nil, err
	}
	background, err := process.LoadBackground(cfg.Oracle.Background)
	if err != nil {
		return nil, err
	}
	engine, err := runtime.NewEngine(problem, process.NewRunner(process.WithConfig(cfg.Oracle)),
		runtime.WithHorizon(cfg.Horizon),
		runtime.WithMaxIterations(cfg.MaxIterations),
		runtime.WithBackground(background),
	)
	if err != nil {
		return nil, err
	}

	state := domain.NewRunState(runID)
	if runID != "" {
		store, closeStore, err := OpenStore(cfg)
		if err != nil {
			return nil, err
		}
		defer closeStore()

		cp, err := store.Load(ctx, runID)
		switch {
		case err == nil:
			state = cp.Restore()
		case errors.Is(err, domain.ErrRunNotFound):
		default:
			return nil, fmt.Errorf("failed to load run %q: %w", runID, err)
		}
	}
	return &Inspection{Problem: problem, State: state, engine: engine}, nil
}

// Ranking returns up to n pairs the next iteration may pick, best first.
// Expert pairs, accepted constraints and unvisited pairs are left out.
func (in *Inspection) Ranking(n int) []domain.Candidate {
	svf := in.engine.Visitation(in.State.Constraints)
	expert := in.engine.Expert()

	var out []domain.Candidate
	for _, r := range irl.Rank(svf) {
		if len(out) >= n || r.Value <= 0 {
			break
		}
		if expert.Contains(r.Pair) || in.State.Constraints.Contains(r.Pair) {
			continue
		}
		out = append(out, in.engine.Candidate(r))
	}
	return out
}

// Next returns the candidate the next iteration would submit.
func (in *Inspection) Next() (domain.Candidate, bool) {
	r, ok := irl.SelectCandidate(in.engine.Visitation(in.State.Constraints), in.engine.Expert(), in.State.Constraints)
	if !ok {
		return domain.Candidate{}, false
	}
	return in.engine.Candidate(r), true
}

// Program renders the solver input of the next iteration. ok is false when no
// candidate is left.
func (in *Inspection) Program() (string, bool) {
	c, ok := in.Next()
	if !ok {
		return "", false
	}
	return in.engine.Program(c).String(), true
}

// Graph renders the expert path and the accepted constraints as a Mermaid
// diagram. The next candidate is highlighted, or the last constraint once the
// run has stopped.
func (in *Inspection) Graph() string {
	overlay := &graph.Overlay{Constraints: in.State.Constraints.Pairs()}
	if in.State.Status.Terminal() {
		if last, ok := in.State.Constraints.Last(); ok {
			overlay.Current = &last
		}
	} else if c, ok := in.Next(); ok {
		overlay.Current = &c.Pair
	}
	return graph.GenerateMermaid(in.Problem.Space, in.Problem.Model, in.Problem.Trajectories, overlay)
}
