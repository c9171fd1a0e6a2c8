package domain

// Pair addresses one (state, action) cell by index.
type Pair struct {
	State  int `json:"state" yaml:"state"`
	Action int `json:"action" yaml:"action"`
}

// ConstraintSet is the ordered set of (state, action) pairs believed to be illegal.
// It only grows: elements are never removed or reordered, and the order records
// the sequence in which candidates were discovered.
type ConstraintSet struct {
	items []Pair
	index map[Pair]struct{}
}

// NewConstraintSet creates a set seeded with pairs, skipping duplicates.
func NewConstraintSet(pairs ...Pair) *ConstraintSet {
	c := &ConstraintSet{index: make(map[Pair]struct{}, len(pairs))}
	for _, p := range pairs {
		c.Add(p)
	}
	return c
}

// Add appends p and reports whether it was new.
func (c *ConstraintSet) Add(p Pair) bool {
	if c.index == nil {
		c.index = make(map[Pair]struct{})
	}
	if _, ok := c.index[p]; ok {
		return false
	}
	c.index[p] = struct{}{}
	c.items = append(c.items, p)
	return true
}

// Contains reports membership.
func (c *ConstraintSet) Contains(p Pair) bool {
	if c == nil {
		return false
	}
	_, ok := c.index[p]
	return ok
}

// Len returns the number of constraints.
func (c *ConstraintSet) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Pairs returns a copy of the constraints in discovery order.
func (c *ConstraintSet) Pairs() []Pair {
	if c == nil {
		return nil
	}
	out := make([]Pair, len(c.items))
	copy(out, c.items)
	return out
}

// Last returns the most recently added constraint.
func (c *ConstraintSet) Last() (Pair, bool) {
	if c.Len() == 0 {
		return Pair{}, false
	}
	return c.items[len(c.items)-1], true
}

// ExpertSet holds every (state, action) pair observed in expert trajectories.
// Built once per run and treated as read-only.
type ExpertSet map[Pair]struct{}

// Contains reports whether the expert was observed taking p.
func (e ExpertSet) Contains(p Pair) bool {
	_, ok := e[p]
	return ok
}
