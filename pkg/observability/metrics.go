package observability

import (
	"context"

	"github.com/aretw0/gleaner/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by the solver hooks.
type Metrics struct {
	Iterations     prometheus.Counter
	Constraints    prometheus.Gauge
	OracleDuration prometheus.Histogram
	OracleErrors   prometheus.Counter
	Outcomes       *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gleaner_iterations_total",
			Help: "Total number of inference iterations started",
		}),
		Constraints: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gleaner_constraints",
			Help: "Size of the candidate constraint set",
		}),
		OracleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gleaner_oracle_duration_seconds",
			Help:    "Duration of induction solver invocations",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		OracleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gleaner_oracle_errors_total",
			Help: "Induction solver invocations that failed",
		}),
		Outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gleaner_outcomes_total",
			Help: "Runs finished, by terminal status",
		}, []string{"status"}),
	}

	for _, c := range []prometheus.Collector{m.Iterations, m.Constraints, m.OracleDuration, m.OracleErrors, m.Outcomes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnIteration: func(ctx context.Context, e *domain.IterationEvent) {
			m.Iterations.Inc()
			m.Constraints.Set(float64(e.Constraints))
		},
		OnOracleReturn: func(ctx context.Context, e *domain.OracleEvent) {
			m.OracleDuration.Observe(e.Duration.Seconds())
			if e.Err != nil {
				m.OracleErrors.Inc()
			}
		},
		OnTerminate: func(ctx context.Context, e *domain.TerminateEvent) {
			m.Constraints.Set(float64(e.Constraints))
			m.Outcomes.WithLabelValues(string(e.Status)).Inc()
		},
	}
}
