package irl

import (
	"sort"

	"github.com/aretw0/gleaner/pkg/domain"
)

// Ranked is one cell of an SVF table.
type Ranked struct {
	Pair  domain.Pair
	Value float64
}

// Rank orders every cell of svf by value, descending. Ties are broken by
// ascending state index, then ascending action index.
func Rank(svf Table) []Ranked {
	ranked := make([]Ranked, 0, len(svf.Values))
	for s := 0; s < svf.States; s++ {
		for a := 0; a < svf.Actions; a++ {
			ranked = append(ranked, Ranked{
				Pair:  domain.Pair{State: s, Action: a},
				Value: svf.At(s, a),
			})
		}
	}
	// The flattening order already is the tie-break order, so a stable sort suffices.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Value > ranked[j].Value
	})
	return ranked
}

// SelectCandidate returns the highest-ranked pair that is neither an expert
// transition nor an accepted constraint. Pairs with no visitation mass are never
// candidates. ok is false when no such pair exists.
func SelectCandidate(svf Table, expert domain.ExpertSet, constraints *domain.ConstraintSet) (Ranked, bool) {
	for _, r := range Rank(svf) {
		if r.Value <= 0 {
			break
		}
		if expert.Contains(r.Pair) || constraints.Contains(r.Pair) {
			continue
		}
		return r, true
	}
	return Ranked{}, false
}
