package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/patient-portal/internal/observability/metrics"
)

// setupPortalMetrics builds a dedicated registry with process/Go collectors
// and the portal series.
func setupPortalMetrics() (http.Handler, *metrics.PortalMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	portalMetrics := metrics.NewPortalMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), portalMetrics
}
