package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthEndpoint(t *testing.T) {
	f := setupTestRouter(t)

	response := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	f.router.ServeHTTP(response, req)

	assert.Equal(t, http.StatusOK, response.Code)

	var health HealthResponse
	decodeJSON(t, response.Body, &health)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "test", health.Version)
	assert.Equal(t, "ok", health.Checks["database"])
}

func TestPingEndpoint(t *testing.T) {
	f := setupTestRouter(t)

	response := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ping", nil)
	f.router.ServeHTTP(response, req)

	assert.Equal(t, http.StatusOK, response.Code)
	assert.JSONEq(t, `{"message": "pong"}`, response.Body.String())
}
