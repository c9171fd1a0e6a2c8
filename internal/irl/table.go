// Package irl implements the maximum-entropy forward pass: the masked uniform
// policy, the expected state-visitation frequency over a finite horizon and the
// ranking of (state, action) pairs by visitation mass.
//
// Every function here is pure: the same inputs always produce bit-identical outputs.
package irl

// Table is a dense [state][action] matrix, used for policies and SVF tables.
type Table struct {
	States  int
	Actions int
	Values  []float64
}

// NewTable allocates an all-zero table.
func NewTable(states, actions int) Table {
	return Table{
		States:  states,
		Actions: actions,
		Values:  make([]float64, states*actions),
	}
}

// At returns cell (s, a).
func (t Table) At(s, a int) float64 {
	return t.Values[s*t.Actions+a]
}

// Set assigns cell (s, a).
func (t Table) Set(s, a int, v float64) {
	t.Values[s*t.Actions+a] = v
}

// Row returns the action row of state s. The slice aliases the table.
func (t Table) Row(s int) []float64 {
	return t.Values[s*t.Actions : (s+1)*t.Actions]
}

// Sum returns the sum of every cell.
func (t Table) Sum() float64 {
	total := 0.0
	for _, v := range t.Values {
		total += v
	}
	return total
}
