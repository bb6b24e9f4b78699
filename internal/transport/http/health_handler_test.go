package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datastudio/internal/services"
)

type fixedSessions struct{ n int }

func (f fixedSessions) ActiveSessions() int { return f.n }

func newHealthRouter(sessions services.SessionCounter) http.Handler {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	handler := NewHealthHandler(services.NewHealthService("0.1.0", sessions, logger), logger)

	r := chi.NewRouter()
	r.Mount("/api/health", handler.Routes())
	r.Get("/api/version", handler.Version)
	return r
}

func TestHealthHandler_HealthCheck(t *testing.T) {
	router := newHealthRouter(fixedSessions{n: 1})

	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "0.1.0", status.Version)
}

func TestHealthHandler_ReadinessCheck(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		router := newHealthRouter(fixedSessions{})

		req := httptest.NewRequest("GET", "/api/health/ready", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ready"`)
	})

	t.Run("not ready", func(t *testing.T) {
		router := newHealthRouter(nil)

		req := httptest.NewRequest("GET", "/api/health/ready", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"not_ready"`)
	})
}

func TestHealthHandler_LivenessCheck(t *testing.T) {
	router := newHealthRouter(fixedSessions{})

	req := httptest.NewRequest("GET", "/api/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"alive"`)
	assert.Contains(t, rec.Body.String(), "go_version")
}

func TestHealthHandler_Version(t *testing.T) {
	router := newHealthRouter(fixedSessions{})

	req := httptest.NewRequest("GET", "/api/version", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var info map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "0.1.0", info["version"])
	assert.Contains(t, info, "go_version")
}
