package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wolfman30/appointment-parser/internal/appointment"
	"github.com/wolfman30/appointment-parser/internal/extract"
	"github.com/wolfman30/appointment-parser/pkg/logging"
)

// failingPrimary forces every request through the heuristic path.
type failingPrimary struct{}

func (failingPrimary) Extract(_ context.Context, _, _, _ string) extract.Outcome {
	return extract.Failed("down")
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.Default()
	svc := appointment.NewService(nil, failingPrimary{}, "UTC", logger,
		appointment.WithClock(func() time.Time {
			return time.Date(2026, time.August, 24, 12, 0, 0, 0, time.UTC)
		}))
	handler := appointment.NewHandler(svc, 5*1024*1024, logger)

	cfg := &Config{
		Logger:             logger,
		AppointmentHandler: handler,
	}

	return New(cfg)
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterParseAppointmentEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/parse-appointment",
		strings.NewReader(`{"text":"next friday 4pm dentist"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}

	var resp appointment.OKResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != extract.StatusOK {
		t.Errorf("expected ok status, got %q", resp.Status)
	}
	if resp.Appointment.Department != "Dentist" {
		t.Errorf("expected department Dentist, got %q", resp.Appointment.Department)
	}
}

func TestRouterInvalidInput(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/parse-appointment",
		strings.NewReader(`{"text":""}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}
