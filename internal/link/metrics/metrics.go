// Package metrics exposes Prometheus collectors for the link lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks link issuance, resolution, and completion by subject kind.
type Metrics struct {
	Issued    *prometheus.CounterVec
	Resolved  *prometheus.CounterVec
	Completed *prometheus.CounterVec
	Swept     prometheus.Counter
}

// New registers the link collectors with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Issued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zorvixe",
			Subsystem: "links",
			Name:      "issued_total",
			Help:      "Number of access links issued.",
		}, []string{"kind"}),
		Resolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zorvixe",
			Subsystem: "links",
			Name:      "resolved_total",
			Help:      "Number of link resolution attempts by result.",
		}, []string{"kind", "result"}),
		Completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zorvixe",
			Subsystem: "links",
			Name:      "completed_total",
			Help:      "Number of links consumed by a completed workflow.",
		}, []string{"kind"}),
		Swept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zorvixe",
			Subsystem: "links",
			Name:      "swept_total",
			Help:      "Number of expired links deactivated by the sweeper.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Issued, m.Resolved, m.Completed, m.Swept)
	}
	return m
}

// ObserveIssued records an issued link.
func (m *Metrics) ObserveIssued(kind string) {
	if m == nil {
		return
	}
	m.Issued.WithLabelValues(kind).Inc()
}

// ObserveResolved records a resolution attempt. Result is "ok", "invalid", or
// "completed".
func (m *Metrics) ObserveResolved(kind, result string) {
	if m == nil {
		return
	}
	m.Resolved.WithLabelValues(kind, result).Inc()
}

// ObserveCompleted records a consumed link.
func (m *Metrics) ObserveCompleted(kind string) {
	if m == nil {
		return
	}
	m.Completed.WithLabelValues(kind).Inc()
}

// ObserveSwept records links deactivated by the background sweeper.
func (m *Metrics) ObserveSwept(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.Swept.Add(float64(n))
}
