package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error        { return p.err }
func (p stubPinger) HealthCheck(context.Context) error { return p.err }

func newTestServer(db DatabasePinger, model ModelChecker) *Server {
	return NewServer(Config{ServiceName: "signal-service", Version: "test", DB: db, Model: model})
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" || resp.Service != "signal-service" {
		t.Errorf("unexpected health response: %+v", resp)
	}
}

func TestHandleReadyAllHealthy(t *testing.T) {
	s := newTestServer(stubPinger{}, stubPinger{})
	s.SetReady(true)

	rec := httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp ReadyResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Checks["database"] != "ok" || resp.Checks["model_service"] != "ok" {
		t.Errorf("unexpected checks: %v", resp.Checks)
	}
}

func TestHandleReadyNotMarkedReady(t *testing.T) {
	s := newTestServer(stubPinger{}, nil)

	rec := httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}

func TestHandleReadyModelDown(t *testing.T) {
	s := newTestServer(stubPinger{}, stubPinger{err: errors.New("connection refused")})
	s.SetReady(true)

	rec := httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
	var resp ReadyResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Checks["model_service"] == "ok" {
		t.Error("expected model_service check to report the failure")
	}
}
