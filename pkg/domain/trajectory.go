package domain

import "fmt"

// Step is one observed transition of an expert.
type Step struct {
	State  State  `json:"state" yaml:"state" mapstructure:"state"`
	Action string `json:"action" yaml:"action" mapstructure:"action"`
	Next   State  `json:"next" yaml:"next" mapstructure:"next"`
}

// Trajectory is one legal execution observed from the expert.
type Trajectory []Step

// BuildExpertSet collects every (state, action) pair appearing in the trajectories.
// Steps referring to states or actions outside the space are rejected.
func BuildExpertSet(space *Space, trajectories []Trajectory) (ExpertSet, error) {
	expert := make(ExpertSet)
	for ti, traj := range trajectories {
		for si, step := range traj {
			p, err := space.Pair(step.State, step.Action)
			if err != nil {
				return nil, fmt.Errorf("%w: trajectory %d step %d: %v", ErrInvalidTrajectory, ti, si, err)
			}
			expert[p] = struct{}{}
		}
	}
	return expert, nil
}

// Transitions returns the number of steps across all trajectories.
func Transitions(trajectories []Trajectory) int {
	n := 0
	for _, t := range trajectories {
		n += len(t)
	}
	return n
}
