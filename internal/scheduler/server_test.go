package scheduler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/releasebot/internal/detector"
)

func newTestServer(t *testing.T) (*Server, *Health, *Metrics) {
	t.Helper()
	reg := prometheus.NewRegistry()
	health := NewHealth()
	return NewServer(":0", health, reg), health, NewMetrics(reg)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_Liveness(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := get(t, s.Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestServer_Readiness(t *testing.T) {
	s, health, _ := newTestServer(t)

	rec := get(t, s.Handler(), "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	health.SetReady(true)
	health.SetHealthy(ComponentCycle, "fetched 2 tracks, 0 new")
	rec = get(t, s.Handler(), "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp readyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)
	assert.True(t, resp.Components[ComponentCycle].Healthy)

	health.SetUnhealthy(ComponentCycle, assert.AnError)
	rec = get(t, s.Handler(), "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
}

func TestServer_Metrics(t *testing.T) {
	s, _, metrics := newTestServer(t)
	metrics.Observe(detector.CycleResult{Fetched: 5})

	rec := get(t, s.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `releasebot_cycles_total{outcome="success"} 1`))
	assert.Contains(t, body, "releasebot_tracks_fetched 5")
}
