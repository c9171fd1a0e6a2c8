package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// State is the peg occupied by each disk, smallest disk first.
// Pegs are labeled 1..P.
type State []int

// Key returns a comparable representation of the state, usable as a map key.
func (s State) Key() string {
	var sb strings.Builder
	for i, p := range s {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(p))
	}
	return sb.String()
}

// String renders the state as a tuple, e.g. "(1, 2, 3)".
func (s State) String() string {
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = strconv.Itoa(p)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Equal reports whether two states place every disk on the same peg.
func (s State) Equal(other State) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// ParseState parses a comma separated peg list such as "1,2,3" or "(1, 2, 3)".
func ParseState(text string) (State, error) {
	trimmed := strings.Trim(strings.TrimSpace(text), "()[]")
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty state", ErrUnknownState)
	}
	fields := strings.Split(trimmed, ",")
	state := make(State, 0, len(fields))
	for _, f := range fields {
		p, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownState, text)
		}
		state = append(state, p)
	}
	return state, nil
}
