package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMonitorInFlightGuard(t *testing.T) {
	m := NewMonitor()

	if !m.TryBegin() {
		t.Fatal("first TryBegin refused")
	}
	if m.TryBegin() {
		t.Fatal("second TryBegin accepted while in flight")
	}
	if !m.InFlight() {
		t.Error("InFlight() = false during a run")
	}

	m.RecordSuccess("fetched 10 comments, found 2 music-related", 5*time.Millisecond)

	if m.InFlight() {
		t.Error("InFlight() = true after completion")
	}
	if !m.TryBegin() {
		t.Error("TryBegin refused after completion")
	}
	m.RecordFailure(errors.New("boom"), time.Millisecond)
	if !m.TryBegin() {
		t.Error("TryBegin refused after failure")
	}
	m.RecordSuccess("ok", time.Millisecond)
}

func TestMonitorHealth(t *testing.T) {
	m := NewMonitor()

	if !m.IsHealthy() {
		t.Error("fresh monitor should be healthy")
	}

	m.TryBegin()
	m.RecordSuccess("ok", time.Millisecond)
	if !m.IsHealthy() {
		t.Error("monitor unhealthy after success")
	}

	m.TryBegin()
	m.RecordFailure(errors.New("upstream down"), time.Millisecond)
	if m.IsHealthy() {
		t.Error("monitor healthy after failure")
	}
}

func TestStatusSummary(t *testing.T) {
	m := NewMonitor()
	if got := m.GetStatusSummary(); got != "No runs yet" {
		t.Errorf("GetStatusSummary() = %q", got)
	}

	m.TryBegin()
	if got := m.GetStatusSummary(); got != "Analysis in flight" {
		t.Errorf("GetStatusSummary() = %q", got)
	}

	m.RecordSuccess("fetched 5 comments, found 1 music-related", time.Millisecond)
	if got := m.GetStatusSummary(); !strings.Contains(got, "found 1 music-related") {
		t.Errorf("GetStatusSummary() = %q", got)
	}

	m.TryBegin()
	m.RecordFailure(errors.New("key rejected"), time.Millisecond)
	if got := m.GetStatusSummary(); !strings.Contains(got, "failed") || !strings.Contains(got, "key rejected") {
		t.Errorf("GetStatusSummary() = %q", got)
	}
}

func TestHealthHandlers(t *testing.T) {
	m := NewMonitor()
	h := NewHealthServer(m, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.HealthHandler(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d before any runs, want 200", rec.Code)
	}

	m.TryBegin()
	m.RecordFailure(errors.New("boom"), time.Millisecond)

	rec = httptest.NewRecorder()
	h.HealthHandler(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("health status = %d after failure, want 503", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.StatusHandler(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "boom") {
		t.Errorf("status body = %q", rec.Body.String())
	}
}
