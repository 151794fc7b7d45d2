package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the audit log.
type Metrics struct {
	EntriesAppended *prometheus.CounterVec
	PersistFailures prometheus.Counter
	AppendDuration  prometheus.Histogram
}

var (
	once     sync.Once
	instance *Metrics
)

// New returns the process-wide audit metrics, registering them on first use.
func New() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			EntriesAppended: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "veriledger_audit_entries_total",
				Help: "Total number of audit entries appended by action",
			}, []string{"action"}),
			PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
				Name: "veriledger_audit_persist_failures_total",
				Help: "Total number of audit entry persistence failures",
			}),
			AppendDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "veriledger_audit_append_duration_seconds",
				Help:    "Time taken to append an audit entry",
				Buckets: []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.1},
			}),
		}
	})
	return instance
}

// IncAppended increments the appended counter for action.
func (m *Metrics) IncAppended(action string) {
	m.EntriesAppended.WithLabelValues(action).Inc()
}

// IncPersistFailures increments the persistence failure counter.
func (m *Metrics) IncPersistFailures() {
	m.PersistFailures.Inc()
}

// ObserveAppendDuration records append latency.
func (m *Metrics) ObserveAppendDuration(seconds float64) {
	m.AppendDuration.Observe(seconds)
}
