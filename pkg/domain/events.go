package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventIteration    EventType = "iteration"
	EventCandidate    EventType = "candidate"
	EventOracleCall   EventType = "oracle_call"
	EventOracleReturn EventType = "oracle_return"
	EventTerminate    EventType = "terminate"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
	Iteration int       `json:"iteration"`
}

// IterationEvent marks the start of an iteration.
type IterationEvent struct {
	EventBase
	Constraints int `json:"constraints"`
}

// CandidateEvent reports the pair picked by the selector.
type CandidateEvent struct {
	EventBase
	Candidate Candidate `json:"candidate"`
}

// OracleEvent represents an induction solver invocation.
type OracleEvent struct {
	EventBase
	Examples int            `json:"examples"`
	Duration time.Duration  `json:"duration,omitempty"`
	Response OracleResponse `json:"response,omitempty"`
	Err      error          `json:"-"`
}

// TerminateEvent is emitted once when the loop reaches a terminal status.
type TerminateEvent struct {
	EventBase
	Status      Status `json:"status"`
	Constraints int    `json:"constraints"`
}

// LifecycleHooks defines callbacks for solver observability.
type LifecycleHooks struct {
	OnIteration    func(context.Context, *IterationEvent)
	OnCandidate    func(context.Context, *CandidateEvent)
	OnOracleCall   func(context.Context, *OracleEvent)
	OnOracleReturn func(context.Context, *OracleEvent)
	OnTerminate    func(context.Context, *TerminateEvent)
}

// Merge combines hooks so that every non-nil callback of each set fires.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnIteration:    chain(h.OnIteration, other.OnIteration),
		OnCandidate:    chain(h.OnCandidate, other.OnCandidate),
		OnOracleCall:   chain(h.OnOracleCall, other.OnOracleCall),
		OnOracleReturn: chain(h.OnOracleReturn, other.OnOracleReturn),
		OnTerminate:    chain(h.OnTerminate, other.OnTerminate),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
