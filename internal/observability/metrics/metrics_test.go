package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPortalMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPortalMetrics(reg)

	m.ObserveBackend("list", "200", 0.2)
	m.ObserveBackend("list", "200", 0.1)
	m.ObserveBackend("cancel", "error", 0.5)
	m.ObserveAction("cancel", "cancelled")

	if got := testutil.ToFloat64(m.backendTotal.WithLabelValues("list", "200")); got != 2 {
		t.Fatalf("expected 2 list calls, got %v", got)
	}
	if got := testutil.ToFloat64(m.actionsTotal.WithLabelValues("cancel", "cancelled")); got != 1 {
		t.Fatalf("expected 1 cancel action, got %v", got)
	}
	if n := testutil.CollectAndCount(m.backendLatency); n != 2 {
		t.Fatalf("expected 2 latency series, got %d", n)
	}
}

func TestPortalMetricsNilSafe(t *testing.T) {
	var m *PortalMetrics
	m.ObserveBackend("list", "200", 0.1)
	m.ObserveAction("load", "ok")
}
