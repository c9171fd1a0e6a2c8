package compiler

import (
	"fmt"
	"strings"

	"github.com/aretw0/gleaner/pkg/domain"
)

// Target is the atom the induced rule must derive for illegal moves.
const Target = "violation"

// ModeBias is a starting search space for the solver: a headless violation
// over the moving disk, the disk below it and their size ordering.
const ModeBias = `#modeh(violation).
#modeb(1, moving_disk(var(disk))).
#modeb(1, disk_below(var(disk))).
#modeb(1, smaller(var(disk), var(disk)), (positive)).
#maxv(2).
`

// Example is one labeled context for the induction solver.
type Example struct {
	// Positive examples must derive Target; negative ones must not.
	Positive bool
	// Facts describe the move, without the trailing period.
	Facts []string
}

// Background returns the facts shared by every example: the disk identifiers
// and the size ordering between them.
func Background(disks int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "disk(1..%d).", disks)
	for i := 1; i <= disks; i++ {
		for j := i + 1; j <= disks; j++ {
			fmt.Fprintf(&sb, " smaller(%d,%d).", i, j)
		}
	}
	return sb.String()
}

// Context renders the example's facts followed by the background facts.
func (e Example) Context(background string) string {
	parts := make([]string, 0, len(e.Facts)+1)
	for _, f := range e.Facts {
		parts = append(parts, f+".")
	}
	parts = append(parts, background)
	return strings.Join(parts, " ")
}

// Render formats the example in the solver's #pos/#neg syntax.
func (e Example) Render(background string) string {
	kind := "#neg"
	if e.Positive {
		kind = "#pos"
	}
	return fmt.Sprintf("%s({%s}, {}, { %s }).", kind, Target, e.Context(background))
}

// Examples labels every expert transition negative and every candidate positive.
func Examples(trajectories []domain.Trajectory, candidates []domain.Candidate) (positives, negatives []Example) {
	for _, traj := range trajectories {
		for _, step := range traj {
			negatives = append(negatives, Example{Facts: Encode(step.State, step.Action)})
		}
	}
	for _, c := range candidates {
		positives = append(positives, Example{Positive: true, Facts: Encode(c.State, c.Action)})
	}
	return positives, negatives
}

// Program assembles the solver input: the optional static configuration
// fragment, then the positive examples, then the negative ones.
type Program struct {
	Config    string
	Disks     int
	Positives []Example
	Negatives []Example
}

// String renders the program text.
func (p Program) String() string {
	bg := Background(p.Disks)

	var sb strings.Builder
	if p.Config != "" {
		sb.WriteString(p.Config)
		sb.WriteString("\n")
	}
	sb.WriteString(joinRendered(p.Positives, bg))
	sb.WriteString("\n")
	sb.WriteString(joinRendered(p.Negatives, bg))
	return sb.String()
}

// Len returns the number of examples.
func (p Program) Len() int {
	return len(p.Positives) + len(p.Negatives)
}

func joinRendered(examples []Example, background string) string {
	lines := make([]string, len(examples))
	for i, e := range examples {
		lines[i] = e.Render(background)
	}
	return strings.Join(lines, "\n")
}
