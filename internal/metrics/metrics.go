// Package metrics defines the Prometheus collectors for ledger actions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "smartsplit"

// Action results recorded in the actions counter.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics groups the collectors updated by the session.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	actions       *prometheus.CounterVec
	people        prometheus.Gauge
	loadFallbacks prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		actions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "User actions dispatched against the ledger, by action and result.",
		}, []string{"action", "result"}),
		people: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "people",
			Help:      "Number of people currently in the ledger.",
		}),
		loadFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_fallbacks_total",
			Help:      "Loads that fell back to an empty ledger.",
		}),
	}
}

// ObserveAction counts one action with its outcome.
func (m *Metrics) ObserveAction(action string, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.actions.WithLabelValues(action, result).Inc()
}

// SetPeople records the current ledger size.
func (m *Metrics) SetPeople(n int) {
	if m == nil {
		return
	}
	m.people.Set(float64(n))
}

// LoadFallback counts one load that degraded to an empty ledger.
func (m *Metrics) LoadFallback() {
	if m == nil {
		return
	}
	m.loadFallbacks.Inc()
}

// Actions exposes the actions counter, mainly for tests.
func (m *Metrics) Actions() *prometheus.CounterVec {
	return m.actions
}

// LoadFallbacks exposes the load fallback counter, mainly for tests.
func (m *Metrics) LoadFallbacks() prometheus.Counter {
	return m.loadFallbacks
}
