package txn

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the executor's prometheus collectors
type Metrics struct {
	runs      *prometheus.CounterVec
	conflicts *prometheus.CounterVec
	attempts  *prometheus.HistogramVec
	duration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg when it is not nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_transactions_total",
				Help: "Total number of executor invocations by action and outcome",
			},
			[]string{"action", "outcome", "error_kind"},
		),
		conflicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_transaction_conflicts_total",
				Help: "Total number of attempts aborted by write contention",
			},
			[]string{"action"},
		),
		attempts: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_transaction_attempts",
				Help:    "Attempts needed per executor invocation",
				Buckets: []float64{1, 2, 3, 4, 5},
			},
			[]string{"action"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_transaction_duration_seconds",
				Help:    "Executor invocation duration including retries",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action", "outcome"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.runs)
		reg.MustRegister(m.conflicts)
		reg.MustRegister(m.attempts)
		reg.MustRegister(m.duration)
	}
	return m
}
