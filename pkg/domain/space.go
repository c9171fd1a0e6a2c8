package domain

import "fmt"

// Space is the fixed index space of the puzzle: every state and every action,
// in the order used as tensor axes.
type Space struct {
	Pegs    int
	Disks   int
	States  []State
	Actions []Action

	stateIndex  map[string]int
	actionIndex map[Action]int
}

// NewSpace enumerates the state space as the Cartesian product of peg labels
// (first disk varies slowest) and the actions as every ordered pair of distinct pegs.
func NewSpace(pegs, disks int) (*Space, error) {
	if pegs < 2 {
		return nil, fmt.Errorf("need at least 2 pegs, got %d", pegs)
	}
	if disks < 1 {
		return nil, fmt.Errorf("need at least 1 disk, got %d", disks)
	}

	states := []State{{}}
	for d := 0; d < disks; d++ {
		next := make([]State, 0, len(states)*pegs)
		for _, prefix := range states {
			for p := 1; p <= pegs; p++ {
				s := make(State, len(prefix), len(prefix)+1)
				copy(s, prefix)
				next = append(next, append(s, p))
			}
		}
		states = next
	}

	var actions []Action
	for from := 1; from <= pegs; from++ {
		for to := 1; to <= pegs; to++ {
			if from != to {
				actions = append(actions, Action{From: from, To: to})
			}
		}
	}

	return NewCustomSpace(pegs, disks, states, actions), nil
}

// NewCustomSpace builds a space from explicit state and action lists.
// It is meant for small hand-made MDPs; no completeness check is done.
func NewCustomSpace(pegs, disks int, states []State, actions []Action) *Space {
	sp := &Space{
		Pegs:        pegs,
		Disks:       disks,
		States:      states,
		Actions:     actions,
		stateIndex:  make(map[string]int, len(states)),
		actionIndex: make(map[Action]int, len(actions)),
	}
	for i, s := range states {
		sp.stateIndex[s.Key()] = i
	}
	for i, a := range actions {
		sp.actionIndex[a] = i
	}
	return sp
}

// NumStates returns |S|.
func (sp *Space) NumStates() int { return len(sp.States) }

// NumActions returns |A|.
func (sp *Space) NumActions() int { return len(sp.Actions) }

// StateIndex returns the index of a state.
func (sp *Space) StateIndex(s State) (int, error) {
	i, ok := sp.stateIndex[s.Key()]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownState, s)
	}
	return i, nil
}

// ActionIndex returns the index of an action label.
func (sp *Space) ActionIndex(label string) (int, error) {
	a, err := ParseAction(label)
	if err != nil {
		return 0, err
	}
	i, ok := sp.actionIndex[a]
	if !ok {
		return 0, fmt.Errorf("%w: %q not in action space", ErrInvalidAction, label)
	}
	return i, nil
}

// Truncate keeps only the first n actions, matching a transition model that
// declares fewer actions than the full enumeration.
func (sp *Space) Truncate(n int) (*Space, error) {
	if n > len(sp.Actions) {
		return nil, fmt.Errorf("%w: %d actions exceed the %d enumerated", ErrInvalidModel, n, len(sp.Actions))
	}
	if n == len(sp.Actions) {
		return sp, nil
	}
	return NewCustomSpace(sp.Pegs, sp.Disks, sp.States, sp.Actions[:n]), nil
}

// Pair resolves a state/action pair into indices.
func (sp *Space) Pair(s State, actionLabel string) (Pair, error) {
	si, err := sp.StateIndex(s)
	if err != nil {
		return Pair{}, err
	}
	ai, err := sp.ActionIndex(actionLabel)
	if err != nil {
		return Pair{}, err
	}
	return Pair{State: si, Action: ai}, nil
}

// Describe returns the state and action a pair refers to.
func (sp *Space) Describe(p Pair) (State, Action) {
	return sp.States[p.State], sp.Actions[p.Action]
}
