// Package metrics exposes Prometheus collectors for the onboarding workflow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks document uploads and their sizes.
type Metrics struct {
	Uploads     prometheus.Counter
	UploadBytes prometheus.Histogram
	Rejected    *prometheus.CounterVec
}

// New registers the onboarding collectors with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zorvixe",
			Subsystem: "onboarding",
			Name:      "uploads_total",
			Help:      "Number of documents accepted.",
		}),
		UploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "zorvixe",
			Subsystem: "onboarding",
			Name:      "upload_bytes",
			Help:      "Size distribution of accepted documents.",
			Buckets:   prometheus.ExponentialBuckets(64<<10, 4, 8),
		}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zorvixe",
			Subsystem: "onboarding",
			Name:      "uploads_rejected_total",
			Help:      "Number of uploads refused before staging, by reason.",
		}, []string{"reason"}),
	}
	if reg != nil {
		reg.MustRegister(m.Uploads, m.UploadBytes, m.Rejected)
	}
	return m
}

// ObserveUpload records an accepted document.
func (m *Metrics) ObserveUpload(sizeBytes int64) {
	if m == nil {
		return
	}
	m.Uploads.Inc()
	m.UploadBytes.Observe(float64(sizeBytes))
}

// ObserveRejected records a refused upload. Reason is "too_large" or
// "unsupported_type".
func (m *Metrics) ObserveRejected(reason string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(reason).Inc()
}
