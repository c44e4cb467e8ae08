package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopping-list-engine/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type fixedStats map[string]interface{}

func (s fixedStats) CacheStats() map[string]interface{} { return s }

func newRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("config", &config.Config{App: config.AppConfig{Version: "9.9.9"}})
		c.Next()
	})
	r.GET("/health", h.HealthCheck)
	r.GET("/ready", h.ReadinessCheck)
	r.GET("/live", h.LivenessCheck)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthCheck(t *testing.T) {
	r := newRouter(NewHandler(nil, fixedStats{"backend": "memory", "size": 3}))

	w := get(r, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "9.9.9", body.Version)
	assert.Equal(t, "memory", body.Cache["backend"])
	assert.Contains(t, body.Runtime, "goroutines")
}

func TestReadinessCheck(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	w := get(newRouter(NewHandler(map[string]Pinger{"catalog": ok}, nil)), "/ready")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","checks":{"catalog":"ok"}}`, w.Body.String())

	w = get(newRouter(NewHandler(map[string]Pinger{"catalog": ok, "cache": down}, nil)), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"not_ready","checks":{"catalog":"ok","cache":"connection refused"}}`, w.Body.String())
}

func TestLivenessCheck(t *testing.T) {
	w := get(newRouter(NewHandler(nil, nil)), "/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())
}
