package irl

import "github.com/aretw0/gleaner/pkg/domain"

// BuildPolicy returns the uniform policy over the actions not forbidden by
// constraints. A state whose actions are all forbidden keeps an all-zero row.
func BuildPolicy(model *domain.TransitionModel, constraints *domain.ConstraintSet) Table {
	pi := NewTable(model.NumStates(), model.NumActions())
	for s := 0; s < pi.States; s++ {
		row := pi.Row(s)
		sum := 0.0
		for a := range row {
			if constraints.Contains(domain.Pair{State: s, Action: a}) {
				continue
			}
			row[a] = 1
			sum++
		}
		if sum == 0 {
			continue
		}
		for a := range row {
			row[a] /= sum
		}
	}
	return pi
}
