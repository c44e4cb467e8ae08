package api

import (
	"errors"
	"time"

	"shopping-list-engine/internal/api/handlers/health"
	shoppingHandler "shopping-list-engine/internal/api/handlers/shopping"
	"shopping-list-engine/internal/api/middleware"
	"shopping-list-engine/internal/core/canonical"
	"shopping-list-engine/internal/infrastructure/config"
	"shopping-list-engine/internal/infrastructure/monitoring"
	"shopping-list-engine/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 超時設置
const timeoutDuration = 30 * time.Second

// Dependencies 路由需要的服務
type Dependencies struct {
	Builder   shoppingHandler.ListBuilder
	Canonical *canonical.Service
	Metrics   *monitoring.Metrics
	// Pingers 就緒檢查的依賴，例如 catalog、cache
	Pingers map[string]health.Pinger
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if deps.Builder == nil || deps.Canonical == nil {
		return nil, errors.New("router requires a builder and a canonical service")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}))
	router.Use(middleware.Debug(cfg.App.Debug))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.GinMiddleware())
	}
	router.Use(func(c *gin.Context) {
		c.Set("config", cfg)
		c.Next()
	})

	// 健康檢查與指標不受限流影響
	healthHandler := health.NewHandler(deps.Pingers, deps.Canonical)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	api := router.Group("/api/v1")
	api.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	api.Use(middleware.NewDeduplicator(cfg.DedupWindow).Handler())
	api.Use(middleware.Timeout(timeoutDuration))

	shoppingHandler.NewHandler(deps.Builder, deps.Canonical).Register(api)

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Bool("metrics", deps.Metrics != nil),
		zap.Int("readiness_checks", len(deps.Pingers)),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}
