package domain

import (
	"fmt"
	"math"
)

// TransitionModel is a dense [state][action][next] probability tensor.
// Each (state, action) slice is a distribution over next states; the solver
// assumes this and never checks it again after loading.
type TransitionModel struct {
	states  int
	actions int
	data    []float64
}

// NewTransitionModel allocates an all-zero model of the given shape.
func NewTransitionModel(states, actions int) *TransitionModel {
	return &TransitionModel{
		states:  states,
		actions: actions,
		data:    make([]float64, states*actions*states),
	}
}

// NewTransitionModelFromData wraps a flat C-ordered buffer.
func NewTransitionModelFromData(states, actions int, data []float64) (*TransitionModel, error) {
	if len(data) != states*actions*states {
		return nil, fmt.Errorf("%w: %d values do not fit shape (%d, %d, %d)", ErrInvalidModel, len(data), states, actions, states)
	}
	return &TransitionModel{states: states, actions: actions, data: data}, nil
}

// NumStates returns the size of the state axes.
func (m *TransitionModel) NumStates() int { return m.states }

// NumActions returns the size of the action axis.
func (m *TransitionModel) NumActions() int { return m.actions }

// At returns P(next | s, a).
func (m *TransitionModel) At(s, a, next int) float64 {
	return m.data[(s*m.actions+a)*m.states+next]
}

// Set assigns P(next | s, a).
func (m *TransitionModel) Set(s, a, next int, p float64) {
	m.data[(s*m.actions+a)*m.states+next] = p
}

// Row returns the next-state distribution of (s, a). The slice aliases the model.
func (m *TransitionModel) Row(s, a int) []float64 {
	off := (s*m.actions + a) * m.states
	return m.data[off : off+m.states]
}

// Data returns the flat C-ordered buffer. The slice aliases the model.
func (m *TransitionModel) Data() []float64 { return m.data }

// Validate checks that every (state, action) row is a probability distribution
// within tolerance.
func (m *TransitionModel) Validate(tolerance float64) error {
	for s := 0; s < m.states; s++ {
		for a := 0; a < m.actions; a++ {
			sum := 0.0
			for _, p := range m.Row(s, a) {
				if p < 0 || math.IsNaN(p) {
					return fmt.Errorf("%w: invalid probability in row (%d, %d)", ErrInvalidModel, s, a)
				}
				sum += p
			}
			if math.Abs(sum-1) > tolerance {
				return fmt.Errorf("%w: row (%d, %d) sums to %g", ErrInvalidModel, s, a, sum)
			}
		}
	}
	return nil
}
