package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveBuild(t *testing.T) {
	m := NewMetrics()
	m.ObserveBuild("recipes", 12, 30*time.Millisecond)
	m.ObserveBuild("recipes", 3, 10*time.Millisecond)
	m.ObserveBuild("meals", 0, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.buildsTotal.WithLabelValues("recipes")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.buildsTotal.WithLabelValues("meals")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.buildItems))
}

func TestObserveCanonical(t *testing.T) {
	m := NewMetrics()
	m.ObserveCanonical("ok", 200*time.Millisecond)
	m.ObserveCanonical("timeout", 8*time.Second)
	m.ObserveCanonical("cached", 0)
	m.ObserveCacheLookup(true)
	m.ObserveCacheLookup(false)
	m.ObserveCacheLookup(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.canonicalRequests.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.canonicalRequests.WithLabelValues("cached")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveBuild("recipes", 1, time.Millisecond)
		m.ObserveCanonical("ok", time.Millisecond)
		m.ObserveCacheLookup(true)
	})
}

func TestGinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/ping", "200")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "shopping_list_http_requests_total"))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
