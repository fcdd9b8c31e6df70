package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appconfig "github.com/wolfman30/patient-portal/internal/config"
)

func TestSetupPortalMetricsExposesMetrics(t *testing.T) {
	handler, portalMetrics := setupPortalMetrics()
	if handler == nil || portalMetrics == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	portalMetrics.ObserveAction("cancel", "cancelled")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "portal_schedule_actions_total") {
		t.Fatalf("expected action counter to be exported")
	}
}

func TestServeFlagsOverrideConfig(t *testing.T) {
	cmd := serveCmd()
	if err := cmd.Flags().Parse([]string{"--port", "9090", "--backend", "http://clinic:8080"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg := &appconfig.Config{Port: "8080", BackendOrigin: "http://localhost:8081"}
	applyFlags(cmd, cfg)

	if cfg.Port != "9090" {
		t.Fatalf("expected port override, got %s", cfg.Port)
	}
	if cfg.BackendOrigin != "http://clinic:8080" {
		t.Fatalf("expected backend override, got %s", cfg.BackendOrigin)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := versionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.TrimSpace(out.String()) != version {
		t.Fatalf("expected %q, got %q", version, out.String())
	}
}
