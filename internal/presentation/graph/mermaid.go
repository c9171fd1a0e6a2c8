package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/gleaner/pkg/domain"
)

// Overlay marks the constraint set of a run on the graph.
type Overlay struct {
	Constraints []domain.Pair
	// Current is highlighted whether or not it is in Constraints.
	Current *domain.Pair
}

// GenerateMermaid produces a Mermaid flowchart of the expert demonstrations.
// It applies semantic styling:
// - First state of a demonstration: ((Circle))
// - Other states: [Rectangle]
// - Expert moves: solid arrows labelled with the action
// - Constrained moves (overlay): dotted red arrows to their most likely next state
// - The current pair (overlay): a thick amber arrow
func GenerateMermaid(space *domain.Space, model *domain.TransitionModel, trajectories []domain.Trajectory, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	declared := make(map[int]bool)
	declare := func(s int, start bool) {
		if declared[s] {
			return
		}
		declared[s] = true
		opener, closer := "[", "]"
		if start {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeID(s), opener, space.States[s], closer)
	}

	links := 0
	seen := make(map[domain.Pair]bool)
	for _, traj := range trajectories {
		for i, step := range traj {
			from, err := space.StateIndex(step.State)
			if err != nil {
				continue
			}
			to, err := space.StateIndex(step.Next)
			if err != nil {
				continue
			}
			a, err := space.ActionIndex(step.Action)
			if err != nil {
				continue
			}
			declare(from, i == 0)
			declare(to, false)

			p := domain.Pair{State: from, Action: a}
			if seen[p] {
				continue
			}
			seen[p] = true
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", nodeID(from), step.Action, nodeID(to))
			links++
		}
	}

	if overlay == nil {
		return sb.String()
	}

	var forbidden, current []int
	edge := func(p domain.Pair) {
		to := likelyNext(model, p)
		declare(p.State, false)
		declare(to, false)
		_, a := space.Describe(p)
		fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", nodeID(p.State), a.Label(), nodeID(to))
	}
	drawn := false
	for _, p := range overlay.Constraints {
		edge(p)
		if overlay.Current != nil && *overlay.Current == p {
			current = append(current, links)
			drawn = true
		} else {
			forbidden = append(forbidden, links)
		}
		links++
	}
	if overlay.Current != nil && !drawn {
		edge(*overlay.Current)
		current = append(current, links)
		links++
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	if len(forbidden) > 0 {
		fmt.Fprintf(&sb, "    linkStyle %s stroke:#d32f2f,stroke-width:2px;\n", joinInts(forbidden))
	}
	if len(current) > 0 {
		fmt.Fprintf(&sb, "    linkStyle %s stroke:#fbc02d,stroke-width:4px;\n", joinInts(current))
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		fmt.Fprintf(&sb, "    class %s current;\n", nodeID(overlay.Current.State))
	}
	return sb.String()
}

// likelyNext returns the most probable successor; the lowest index wins ties.
func likelyNext(model *domain.TransitionModel, p domain.Pair) int {
	best, bestP := p.State, -1.0
	for next, prob := range model.Row(p.State, p.Action) {
		if prob > bestP {
			best, bestP = next, prob
		}
	}
	return best
}

func nodeID(state int) string {
	return fmt.Sprintf("s%d", state)
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ",")
}
