package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andrhp/lp-dashboard/internal/testutil"
)

func TestNewHealthHandler(t *testing.T) {
	db := testutil.NewMockHealthChecker(true)
	cache := testutil.NewMockHealthChecker(true)
	upstream := testutil.NewMockHealthChecker(true)

	handler := NewHealthHandler(db, cache, upstream)
	if handler == nil {
		t.Fatal("expected non-nil handler")
	}
}

func TestHealthHandler_Health_AllHealthy(t *testing.T) {
	handler := NewHealthHandler(
		testutil.NewMockHealthChecker(true),
		testutil.NewMockHealthChecker(true),
		testutil.NewMockHealthChecker(true),
	)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var response HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Status != "healthy" {
		t.Errorf("expected status healthy, got %s", response.Status)
	}
	for _, svc := range []string{"database", "cache", "upstream"} {
		if response.Services[svc] != "healthy" {
			t.Errorf("expected %s healthy, got %s", svc, response.Services[svc])
		}
	}
	if response.Timestamp == "" {
		t.Error("expected non-empty timestamp")
	}
}

func TestHealthHandler_Health_DatabaseUnhealthy(t *testing.T) {
	handler := NewHealthHandler(
		testutil.NewMockHealthChecker(false),
		testutil.NewMockHealthChecker(true),
		testutil.NewMockHealthChecker(true),
	)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.Health(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}

	var response HealthResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if response.Status != "unhealthy" {
		t.Errorf("expected status unhealthy, got %s", response.Status)
	}
	if response.Services["database"] == "healthy" {
		t.Error("expected database to be unhealthy")
	}
}

func TestHealthHandler_Health_UpstreamUnhealthy(t *testing.T) {
	handler := NewHealthHandler(
		testutil.NewMockHealthChecker(true),
		testutil.NewMockHealthChecker(true),
		testutil.NewMockHealthChecker(false),
	)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.Health(rec, req)

	// Upstream outages degrade the service but keep the probe passing
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200 for degraded, got %d", rec.Code)
	}

	var response HealthResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if response.Status != "degraded" {
		t.Errorf("expected status degraded, got %s", response.Status)
	}
}

func TestHealthHandler_Health_OptionalComponentsAbsent(t *testing.T) {
	handler := NewHealthHandler(testutil.NewMockHealthChecker(true), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var response HealthResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if response.Status != "healthy" {
		t.Errorf("expected status healthy, got %s", response.Status)
	}
	if _, ok := response.Services["cache"]; ok {
		t.Error("expected no cache entry when cache is absent")
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	t.Run("ready when database is up", func(t *testing.T) {
		handler := NewHealthHandler(testutil.NewMockHealthChecker(true), nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()

		handler.Ready(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("not ready when database is down", func(t *testing.T) {
		handler := NewHealthHandler(testutil.NewMockHealthChecker(false), nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()

		handler.Ready(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected status 503, got %d", rec.Code)
		}
	})
}

func TestHealthHandler_Live(t *testing.T) {
	handler := NewHealthHandler(testutil.NewMockHealthChecker(false), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	rec := httptest.NewRecorder()

	handler.Live(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}
