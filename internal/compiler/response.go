package compiler

import (
	"strings"

	"github.com/aretw0/gleaner/pkg/domain"
)

// ParseResponse interprets the solver's standard output.
//
// A rule line is a clause whose head is the Target atom, either a rule
// ("violation :- body.") or a fact ("violation."). The response is Found when at
// least one rule line is present; anything else, including "UNSATISFIABLE" and
// empty output, means no separating rule was learned.
func ParseResponse(output string) domain.OracleResponse {
	raw := strings.TrimSpace(output)
	resp := domain.OracleResponse{Raw: raw}

	var rules []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if isTargetClause(line) {
			rules = append(rules, line)
		}
	}
	if len(rules) > 0 {
		resp.Found = true
		resp.Rule = strings.Join(rules, "\n")
	}
	return resp
}

func isTargetClause(line string) bool {
	rest, ok := strings.CutPrefix(line, Target)
	if !ok {
		return false
	}
	rest = strings.TrimSpace(rest)
	return strings.HasPrefix(rest, ":-") || rest == "."
}
