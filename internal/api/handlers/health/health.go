package health

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"shopping-list-engine/internal/infrastructure/config"
	"shopping-list-engine/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger 可檢查連線的依賴（資料庫、Redis）
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsProvider 提供緩存統計
type StatsProvider interface {
	CacheStats() map[string]interface{}
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// Handler 健康檢查
type Handler struct {
	deps  map[string]Pinger
	stats StatsProvider
}

// NewHandler deps 的 key 為依賴名稱，就緒檢查會逐一 Ping
func NewHandler(deps map[string]Pinger, stats StatsProvider) *Handler {
	if deps == nil {
		deps = map[string]Pinger{}
	}
	return &Handler{deps: deps, stats: stats}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	version := ""
	if cfg, ok := c.Get("config"); ok {
		if conf, ok := cfg.(*config.Config); ok {
			version = conf.App.Version
		}
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.stats != nil {
		response.Cache = h.stats.CacheStats()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器：所有依賴都能 Ping 才算就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.deps))
	for name := range h.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	ready := true
	for _, name := range names {
		if err := h.deps[name].Ping(ctx); err != nil {
			common.LogWarn("Dependency not ready", zap.String("dependency", name), zap.Error(err))
			checks[name] = err.Error()
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
