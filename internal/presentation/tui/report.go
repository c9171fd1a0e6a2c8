package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/gleaner"
	"github.com/aretw0/gleaner/pkg/domain"
)

// Report renders the outcome of a run as markdown.
func Report(r *gleaner.Result) string {
	var sb strings.Builder

	switch r.Status {
	case domain.StatusConstraintFound:
		sb.WriteString("# Constraint found\n\n")
	case domain.StatusExhausted:
		sb.WriteString("# No rule found: candidates exhausted\n\n")
		sb.WriteString("Every visited pair is either demonstrated by the expert or already constrained.\n\n")
	case domain.StatusIterationLimit:
		sb.WriteString("# No rule found: iteration limit reached\n\n")
	default:
		fmt.Fprintf(&sb, "# Run %s\n\n", r.Status)
	}

	fmt.Fprintf(&sb, "- **Run**: `%s`\n", r.RunID)
	fmt.Fprintf(&sb, "- **Iterations**: %d\n", r.Iterations)
	fmt.Fprintf(&sb, "- **Constraints**: %d\n", len(r.Constraints))
	if r.Duration > 0 {
		fmt.Fprintf(&sb, "- **Duration**: %s\n", r.Duration.Round(time.Millisecond))
	}
	sb.WriteString("\n")

	if c := r.Candidate; c != nil {
		sb.WriteString("## Candidate\n\n")
		fmt.Fprintf(&sb, "`%s` in state `%s` (visitation %.4f)\n\n", c.Action, c.State, c.Value)
	}

	if r.Status == domain.StatusConstraintFound && r.Response != nil {
		sb.WriteString("## Explanation\n\n")
		fmt.Fprintf(&sb, "```prolog\n%s\n```\n\n", r.Response.Rule)
		if v := r.Verification; v != nil {
			switch {
			case !v.Checked:
				fmt.Fprintf(&sb, "Verification could not run: %s\n\n", v.Detail)
			case v.Separates:
				fmt.Fprintf(&sb, "Verified: %s.\n\n", v.Detail)
			default:
				fmt.Fprintf(&sb, "**Verification failed**: %s.\n\n", v.Detail)
			}
		}
	}

	if len(r.Constraints) > 0 {
		sb.WriteString("## Constraint set\n\n")
		sb.WriteString("| # | State | Action |\n|---|---|---|\n")
		for i, c := range r.Constraints {
			fmt.Fprintf(&sb, "| %d | `%s` | `%s` |\n", i+1, c.State, c.Action)
		}
	}
	return sb.String()
}
