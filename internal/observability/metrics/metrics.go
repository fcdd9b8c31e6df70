package metrics

import "github.com/prometheus/client_golang/prometheus"

// PortalMetrics exposes counters/histograms for backend calls and page actions.
type PortalMetrics struct {
	backendTotal   *prometheus.CounterVec
	backendLatency *prometheus.HistogramVec
	actionsTotal   *prometheus.CounterVec
}

func NewPortalMetrics(reg prometheus.Registerer) *PortalMetrics {
	m := &PortalMetrics{
		backendTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Total requests sent to the clinic backend",
		}, []string{"operation", "status"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Latency of clinic backend requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		actionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "schedule",
			Name:      "actions_total",
			Help:      "Schedule page actions by outcome",
		}, []string{"action", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.backendTotal, m.backendLatency, m.actionsTotal)
	return m
}

// ObserveBackend records one backend call. status is the HTTP status text or "error".
func (m *PortalMetrics) ObserveBackend(operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.backendTotal.WithLabelValues(operation, status).Inc()
	m.backendLatency.WithLabelValues(operation).Observe(seconds)
}

// ObserveAction records the outcome of a page action (load, cancel, reschedule, logout).
func (m *PortalMetrics) ObserveAction(action, outcome string) {
	if m == nil {
		return
	}
	m.actionsTotal.WithLabelValues(action, outcome).Inc()
}
