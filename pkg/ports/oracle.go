package ports

import (
	"context"

	"github.com/aretw0/gleaner/pkg/domain"
)

// Oracle runs the rule-induction solver.
type Oracle interface {
	// Induce hands program to the solver and blocks until it answers.
	// Infrastructure failures (missing executable, abnormal exit, timeout)
	// are returned as errors wrapping domain.ErrOracleFailed.
	Induce(ctx context.Context, program string) (domain.OracleResponse, error)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx context.Context, program string) (domain.OracleResponse, error)

// Induce calls f.
func (f OracleFunc) Induce(ctx context.Context, program string) (domain.OracleResponse, error) {
	return f(ctx, program)
}

// RuleVerifier checks an induced rule independently of the solver that produced it.
type RuleVerifier interface {
	// Verify reports whether rule derives the target for every positive context
	// and for no negative context. Each context is a list of facts.
	Verify(ctx context.Context, rule string, positives, negatives [][]string) (domain.Verification, error)
}
