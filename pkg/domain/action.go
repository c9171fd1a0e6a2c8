package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

// Action moves the top disk of peg From onto peg To.
type Action struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
}

var actionPattern = regexp.MustCompile(`^move\((\d+), (\d+)\)$`)

// Label returns the canonical action label, e.g. "move(1, 2)".
// Trajectory files and the symbolic encoder use this form.
func (a Action) Label() string {
	return fmt.Sprintf("move(%d, %d)", a.From, a.To)
}

func (a Action) String() string {
	return a.Label()
}

// ParseAction parses a canonical action label.
// Only the exact "move(F, T)" form is accepted.
func ParseAction(label string) (Action, error) {
	m := actionPattern.FindStringSubmatch(label)
	if m == nil {
		return Action{}, fmt.Errorf("%w: %q", ErrInvalidAction, label)
	}
	from, _ := strconv.Atoi(m[1])
	to, _ := strconv.Atoi(m[2])
	if from == to {
		return Action{}, fmt.Errorf("%w: source equals destination in %q", ErrInvalidAction, label)
	}
	return Action{From: from, To: to}, nil
}
