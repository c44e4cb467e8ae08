package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shopping_list"

// Metrics Prometheus 指標；nil 時所有方法皆為 no-op
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	buildsTotal   *prometheus.CounterVec
	buildItems    prometheus.Histogram
	buildDuration *prometheus.HistogramVec

	canonicalRequests *prometheus.CounterVec
	canonicalDuration prometheus.Histogram
	cacheLookups      *prometheus.CounterVec
}

// NewMetrics 在獨立的 registry 上建立指標
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		buildsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "builder",
				Name:      "builds_total",
				Help:      "Shopping lists built, by input source",
			},
			[]string{"source"},
		),
		buildItems: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "builder",
				Name:      "items",
				Help:      "Number of items per shopping list",
				Buckets:   []float64{0, 5, 10, 20, 40, 80, 160},
			},
		),
		buildDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "builder",
				Name:      "duration_seconds",
				Help:      "Shopping list build duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"source"},
		),

		canonicalRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "canonical",
				Name:      "requests_total",
				Help:      "Canonicalization batches, by result",
			},
			[]string{"result"},
		),
		canonicalDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "canonical",
				Name:      "request_duration_seconds",
				Help:      "Canonicalization collaborator latency in seconds",
				Buckets:   []float64{0.1, 0.5, 1.0, 2.0, 5.0, 8.0, 15.0},
			},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "canonical",
				Name:      "cache_lookups_total",
				Help:      "Canonicalization cache lookups, by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Registry 供測試讀取指標
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveBuild 記錄一次購物清單建立
func (m *Metrics) ObserveBuild(source string, items int, duration time.Duration) {
	if m == nil {
		return
	}
	m.buildsTotal.WithLabelValues(source).Inc()
	m.buildItems.Observe(float64(items))
	m.buildDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// ObserveCanonical 記錄一次正規化批次；cached 與 disabled 不計延遲
func (m *Metrics) ObserveCanonical(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.canonicalRequests.WithLabelValues(result).Inc()
	if duration > 0 {
		m.canonicalDuration.Observe(duration.Seconds())
	}
}

// ObserveCacheLookup 記錄緩存命中或未命中
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

// GinMiddleware 記錄 HTTP 請求數與耗時
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler /metrics
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
