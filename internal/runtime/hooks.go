package runtime

import (
	"context"
	"time"

	"github.com/aretw0/gleaner/pkg/domain"
)

func (e *Engine) base(state *domain.RunState, t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		RunID:     state.RunID,
		Iteration: state.Iteration,
	}
}

func (e *Engine) emitIteration(ctx context.Context, state *domain.RunState) {
	if e.hooks.OnIteration == nil {
		return
	}
	e.hooks.OnIteration(ctx, &domain.IterationEvent{
		EventBase:   e.base(state, domain.EventIteration),
		Constraints: state.Constraints.Len(),
	})
}

func (e *Engine) emitCandidate(ctx context.Context, state *domain.RunState, c domain.Candidate) {
	if e.hooks.OnCandidate == nil {
		return
	}
	e.hooks.OnCandidate(ctx, &domain.CandidateEvent{
		EventBase: e.base(state, domain.EventCandidate),
		Candidate: c,
	})
}

func (e *Engine) emitOracleCall(ctx context.Context, state *domain.RunState, examples int) {
	if e.hooks.OnOracleCall == nil {
		return
	}
	e.hooks.OnOracleCall(ctx, &domain.OracleEvent{
		EventBase: e.base(state, domain.EventOracleCall),
		Examples:  examples,
	})
}

func (e *Engine) emitOracleReturn(ctx context.Context, state *domain.RunState, examples int, d time.Duration, resp domain.OracleResponse, err error) {
	if e.hooks.OnOracleReturn == nil {
		return
	}
	e.hooks.OnOracleReturn(ctx, &domain.OracleEvent{
		EventBase: e.base(state, domain.EventOracleReturn),
		Examples:  examples,
		Duration:  d,
		Response:  resp,
		Err:       err,
	})
}

func (e *Engine) emitTerminate(ctx context.Context, state *domain.RunState) {
	if e.hooks.OnTerminate == nil {
		return
	}
	e.hooks.OnTerminate(ctx, &domain.TerminateEvent{
		EventBase:   e.base(state, domain.EventTerminate),
		Status:      state.Status,
		Constraints: state.Constraints.Len(),
	})
}
