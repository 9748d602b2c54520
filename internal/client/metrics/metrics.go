// Package metrics exposes Prometheus collectors for the payment workflow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks payment registrations and operator review outcomes.
type Metrics struct {
	Registered prometheus.Counter
	Reviewed   *prometheus.CounterVec
}

// New registers the payment collectors with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Registered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zorvixe",
			Subsystem: "payments",
			Name:      "registered_total",
			Help:      "Number of payment registrations recorded.",
		}),
		Reviewed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zorvixe",
			Subsystem: "payments",
			Name:      "reviewed_total",
			Help:      "Number of operator review decisions by outcome.",
		}, []string{"status"}),
	}
	if reg != nil {
		reg.MustRegister(m.Registered, m.Reviewed)
	}
	return m
}

// ObserveRegistered records a completed registration.
func (m *Metrics) ObserveRegistered() {
	if m == nil {
		return
	}
	m.Registered.Inc()
}

// ObserveReviewed records a review decision.
func (m *Metrics) ObserveReviewed(status string) {
	if m == nil {
		return
	}
	m.Reviewed.WithLabelValues(status).Inc()
}
