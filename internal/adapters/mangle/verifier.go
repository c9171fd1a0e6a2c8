// Package mangle re-checks induced rules with a Datalog engine, independently
// of the solver that produced them.
package mangle

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/aretw0/gleaner/internal/compiler"
	"github.com/aretw0/gleaner/pkg/domain"
	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	"github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"
)

// derivedLimit caps evaluation of a single example.
const derivedLimit = 100000

// The target atom has no arguments in the solver syntax; Datalog needs one.
var target = compiler.Target + "(/derived)"

// Verifier implements ports.RuleVerifier on google/mangle.
type Verifier struct {
	disks int
}

// NewVerifier creates a verifier whose background facts cover disks 1..disks.
func NewVerifier(disks int) *Verifier {
	return &Verifier{disks: disks}
}

// Verify evaluates rule against every example context. Rule text that the
// engine cannot parse or analyze is returned as an error.
func (v *Verifier) Verify(ctx context.Context, rule string, positives, negatives [][]string) (domain.Verification, error) {
	clauses, err := Translate(rule)
	if err != nil {
		return domain.Verification{}, err
	}

	var problems []string
	for i, facts := range positives {
		if err := ctx.Err(); err != nil {
			return domain.Verification{}, err
		}
		derived, err := v.derives(clauses, facts)
		if err != nil {
			return domain.Verification{}, err
		}
		if !derived {
			problems = append(problems, fmt.Sprintf("positive %d not derived", i))
		}
	}
	for i, facts := range negatives {
		if err := ctx.Err(); err != nil {
			return domain.Verification{}, err
		}
		derived, err := v.derives(clauses, facts)
		if err != nil {
			return domain.Verification{}, err
		}
		if derived {
			problems = append(problems, fmt.Sprintf("negative %d derived", i))
		}
	}

	result := domain.Verification{Checked: true, Separates: len(problems) == 0}
	if len(problems) > 0 {
		result.Detail = strings.Join(problems, "; ")
	} else {
		result.Detail = fmt.Sprintf("separates %d positive and %d negative examples", len(positives), len(negatives))
	}
	return result, nil
}

func (v *Verifier) derives(clauses string, facts []string) (bool, error) {
	var sb strings.Builder
	sb.WriteString(clauses)
	sb.WriteString("\n")
	for _, f := range facts {
		sb.WriteString(translateTerms(f))
		sb.WriteString(".\n")
	}
	sb.WriteString(v.background())

	unit, err := parse.Unit(strings.NewReader(sb.String()))
	if err != nil {
		return false, fmt.Errorf("failed to parse rule program: %w", err)
	}
	info, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return false, fmt.Errorf("failed to analyze rule program: %w", err)
	}

	store := factstore.NewSimpleInMemoryStore()
	if _, err := engine.EvalProgramWithStats(info, store, engine.WithCreatedFactLimit(derivedLimit)); err != nil {
		return false, fmt.Errorf("failed to evaluate rule program: %w", err)
	}

	found := false
	err = store.GetFacts(ast.NewQuery(ast.PredicateSym{Symbol: compiler.Target, Arity: 1}), func(ast.Atom) error {
		found = true
		return nil
	})
	return found, err
}

func (v *Verifier) background() string {
	var sb strings.Builder
	for i := 1; i <= v.disks; i++ {
		fmt.Fprintf(&sb, "disk(%d).\n", i)
	}
	for i := 1; i <= v.disks; i++ {
		for j := i + 1; j <= v.disks; j++ {
			fmt.Fprintf(&sb, "smaller(%d, %d).\n", i, j)
		}
	}
	return sb.String()
}

// Translate rewrites solver rules, one per line, into Datalog clauses. Each
// rule must end with a period.
func Translate(rule string) (string, error) {
	var out []string
	for _, line := range strings.Split(rule, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasSuffix(line, ".") {
			return "", fmt.Errorf("rule %q is not terminated", line)
		}
		out = append(out, translateTerms(line))
	}
	if len(out) == 0 {
		return "", fmt.Errorf("no rule to verify")
	}
	return strings.Join(out, "\n"), nil
}

// translateTerms maps solver syntax onto Datalog: lowercase constants become
// names ("none" -> "/none"), "not" becomes "!", a top-level ";" in a body
// becomes ",", and the bare target atom gains a constant argument. Quoted text
// is copied unchanged.
func translateTerms(src string) string {
	var sb strings.Builder
	runes := []rune(src)
	depth, body := 0, false
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == ':' && i+1 < len(runes) && runes[i+1] == '-':
			body = true
			sb.WriteString(":-")
			i += 2
		case r == ';' && body && depth == 0:
			sb.WriteRune(',')
			i++
		case r == '(' || r == ')':
			if r == '(' {
				depth++
			} else {
				depth--
			}
			sb.WriteRune(r)
			i++
		case r == '"':
			j := i + 1
			for j < len(runes) && runes[j] != '"' {
				j++
			}
			if j < len(runes) {
				j++
			}
			sb.WriteString(string(runes[i:j]))
			i = j
		case unicode.IsLower(r) && (i == 0 || !isIdent(runes[i-1])):
			j := i
			for j < len(runes) && isIdent(runes[j]) {
				j++
			}
			word := string(runes[i:j])
			next := nextNonSpace(runes, j)
			switch {
			case word == "not" && next != '(' && next != 0:
				sb.WriteString("!")
				// Drop the separating whitespace.
				for j < len(runes) && unicode.IsSpace(runes[j]) {
					j++
				}
			case word == compiler.Target && next != '(':
				sb.WriteString(target)
			case next == '(':
				sb.WriteString(word)
			default:
				sb.WriteString("/" + word)
			}
			i = j
		default:
			sb.WriteRune(r)
			i++
		}
	}
	return sb.String()
}

func isIdent(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func nextNonSpace(runes []rune, i int) rune {
	for ; i < len(runes); i++ {
		if !unicode.IsSpace(runes[i]) {
			return runes[i]
		}
	}
	return 0
}
