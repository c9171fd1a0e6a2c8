// Package hanoi generates the inputs of the peg puzzle: the physical transition
// model and an optimal expert demonstration.
//
// The model knows nothing about the puzzle's legality rule: moving a larger disk
// onto a smaller one is physically possible. Discovering that rule is the
// learner's job.
package hanoi

import (
	"fmt"

	"github.com/aretw0/gleaner/pkg/domain"
)

// Top returns the 1-based position of the smallest disk on peg, or 0 when the peg is empty.
func Top(s domain.State, peg int) int {
	for i, p := range s {
		if p == peg {
			return i + 1
		}
	}
	return 0
}

// Apply moves the top disk of a.From onto a.To. Moving from an empty peg leaves
// the state unchanged.
func Apply(s domain.State, a domain.Action) domain.State {
	next := make(domain.State, len(s))
	copy(next, s)
	if top := Top(s, a.From); top > 0 {
		next[top-1] = a.To
	}
	return next
}

// Legal reports whether a moves a disk onto an empty peg or a larger disk.
func Legal(s domain.State, a domain.Action) bool {
	moving := Top(s, a.From)
	if moving == 0 {
		return false
	}
	below := Top(s, a.To)
	return below == 0 || below > moving
}

// TransitionModel builds the model of space. With probability slip the move
// fails and the state is unchanged.
func TransitionModel(space *domain.Space, slip float64) (*domain.TransitionModel, error) {
	if slip < 0 || slip >= 1 {
		return nil, fmt.Errorf("slip must be in [0, 1), got %g", slip)
	}
	m := domain.NewTransitionModel(space.NumStates(), space.NumActions())
	for si, s := range space.States {
		for ai, a := range space.Actions {
			next, err := space.StateIndex(Apply(s, a))
			if err != nil {
				return nil, err
			}
			m.Set(si, ai, next, m.At(si, ai, next)+1-slip)
			m.Set(si, ai, si, m.At(si, ai, si)+slip)
		}
	}
	return m, nil
}

// Solve returns the optimal demonstration moving every disk from peg from to
// peg to, using the remaining pegs as spare. It needs at least 3 pegs.
func Solve(space *domain.Space, from, to int) (domain.Trajectory, error) {
	if space.Pegs < 3 {
		return nil, fmt.Errorf("need at least 3 pegs to solve, got %d", space.Pegs)
	}
	if from == to || from < 1 || to < 1 || from > space.Pegs || to > space.Pegs {
		return nil, fmt.Errorf("invalid pegs %d -> %d", from, to)
	}
	spare := 1
	for spare == from || spare == to {
		spare++
	}

	state := make(domain.State, space.Disks)
	for i := range state {
		state[i] = from
	}

	var traj domain.Trajectory
	var move func(n, src, dst, via int)
	move = func(n, src, dst, via int) {
		if n == 0 {
			return
		}
		move(n-1, src, via, dst)
		a := domain.Action{From: src, To: dst}
		next := Apply(state, a)
		traj = append(traj, domain.Step{State: state, Action: a.Label(), Next: next})
		state = next
		move(n-1, via, dst, src)
	}
	move(space.Disks, from, to, spare)
	return traj, nil
}
