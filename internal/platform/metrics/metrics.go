package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds process-wide HTTP metrics. Business modules register their
// own counters in their metrics packages.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
}

// New creates the platform metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zorvixe_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route pattern and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route", "status"}),
	}
	if reg != nil {
		reg.MustRegister(m.RequestDuration)
	}
	return m
}
