package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/gleaner/pkg/domain"
)

// LogHooks returns hooks that log every lifecycle event.
// Per-iteration events go to Debug; oracle answers and termination to Info.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnIteration: func(ctx context.Context, e *domain.IterationEvent) {
			logger.DebugContext(ctx, "iteration",
				"run_id", e.RunID,
				"iteration", e.Iteration,
				"constraints", e.Constraints,
			)
		},
		OnCandidate: func(ctx context.Context, e *domain.CandidateEvent) {
			logger.DebugContext(ctx, "candidate",
				"iteration", e.Iteration,
				"state", e.Candidate.State.String(),
				"action", e.Candidate.Action,
				"svf", e.Candidate.Value,
			)
		},
		OnOracleCall: func(ctx context.Context, e *domain.OracleEvent) {
			logger.DebugContext(ctx, "oracle_call",
				"iteration", e.Iteration,
				"examples", e.Examples,
			)
		},
		OnOracleReturn: func(ctx context.Context, e *domain.OracleEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "oracle_return",
					"iteration", e.Iteration,
					"duration", e.Duration,
					"error", e.Err,
				)
				return
			}
			logger.InfoContext(ctx, "oracle_return",
				"iteration", e.Iteration,
				"duration", e.Duration,
				"found", e.Response.Found,
			)
		},
		OnTerminate: func(ctx context.Context, e *domain.TerminateEvent) {
			logger.InfoContext(ctx, "terminate",
				"run_id", e.RunID,
				"status", e.Status,
				"iterations", e.Iteration,
				"constraints", e.Constraints,
			)
		},
	}
}
