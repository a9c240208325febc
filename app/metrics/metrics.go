package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters for the aggregation service.
type Metrics struct {
	HTTPRequests      *prometheus.CounterVec // labels: path, status
	DegradedResponses *prometheus.CounterVec // labels: capability
	RequestDuration   *prometheus.HistogramVec
}

// New creates and registers all service metrics with the default Prometheus
// registry.
func New() *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazardfeed",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"path", "status"}),
		DegradedResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazardfeed",
			Name:      "degraded_responses_total",
			Help:      "Responses served with a degradation note because upstream data was unavailable.",
		}, []string{"capability"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hazardfeed",
			Name:      "request_duration_seconds",
			Help:      "HTTP request handling duration.",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 15, 30},
		}, []string{"path"}),
	}

	prometheus.MustRegister(
		m.HTTPRequests,
		m.DegradedResponses,
		m.RequestDuration,
	)

	return m
}

// NewForTesting creates Metrics without touching the default registry, so
// tests can construct handlers repeatedly.
func NewForTesting() *Metrics {
	return &Metrics{
		HTTPRequests:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hazardfeed", Name: "http_requests_total"}, []string{"path", "status"}),
		DegradedResponses: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hazardfeed", Name: "degraded_responses_total"}, []string{"capability"}),
		RequestDuration:   prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "hazardfeed", Name: "request_duration_seconds"}, []string{"path"}),
	}
}

// RecordDegraded bumps the degraded-response counter when note is non-empty.
func (m *Metrics) RecordDegraded(capability, note string) {
	if note == "" {
		return
	}
	m.DegradedResponses.WithLabelValues(capability).Inc()
}
