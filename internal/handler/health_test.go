package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getHealth(t *testing.T, h *HealthHandler) (int, map[string]string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", h.Health)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHealthHandler_JournalDisabled(t *testing.T) {
	status, body := getHealth(t, NewHealthHandler(nil, "production"))

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]string{
		"status":   "healthy",
		"database": "disabled",
		"gateway":  "production",
	}, body)
}

// Integration test: requires running database
func TestHealthHandler_WithJournal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pool := getTestPool(t)
	if pool == nil {
		t.Skip("no database available")
	}

	t.Run("connected", func(t *testing.T) {
		status, body := getHealth(t, NewHealthHandler(pool, "test"))
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "connected", body["database"])
	})

	t.Run("closed pool reports unhealthy", func(t *testing.T) {
		pool.Close()
		status, body := getHealth(t, NewHealthHandler(pool, "test"))
		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.Equal(t, "unhealthy", body["status"])
		assert.Equal(t, "disconnected", body["database"])
	})
}
