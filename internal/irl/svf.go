package irl

import "github.com/aretw0/gleaner/pkg/domain"

const (
	// DefaultHorizon is the rollout length used when none is given.
	DefaultHorizon = 30
	// SolverHorizon is the rollout length the inference loop runs with.
	SolverHorizon = 50
)

// Propagate computes the expected (state, action) visitation counts of policy
// over horizon steps, starting from the uniform state distribution.
//
// Cell (s, a) of the result is policy[s, a] times the expected number of visits
// to s. Mass entering a state with an all-zero policy row is dropped.
func Propagate(model *domain.TransitionModel, policy Table, horizon int) Table {
	n := model.NumStates()
	mu := make([]float64, n)
	for s := range mu {
		mu[s] = 1 / float64(n)
	}

	visits := make([]float64, n)
	next := make([]float64, n)
	for step := 0; step < horizon; step++ {
		for s, m := range mu {
			visits[s] += m
		}

		for i := range next {
			next[i] = 0
		}
		for s := 0; s < n; s++ {
			if mu[s] == 0 {
				continue
			}
			for a, p := range policy.Row(s) {
				if p <= 0 {
					continue
				}
				w := mu[s] * p
				for ns, t := range model.Row(s, a) {
					next[ns] += w * t
				}
			}
		}
		mu, next = next, mu
	}

	svf := NewTable(policy.States, policy.Actions)
	for s := 0; s < svf.States; s++ {
		for a, p := range policy.Row(s) {
			svf.Set(s, a, p*visits[s])
		}
	}
	return svf
}
