package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopping-list-engine/internal/api"
	"shopping-list-engine/internal/api/handlers/health"
	"shopping-list-engine/internal/core/canonical"
	"shopping-list-engine/internal/core/catalog"
	"shopping-list-engine/internal/core/shopping"
	"shopping-list-engine/internal/infrastructure/config"
	"shopping-list-engine/internal/infrastructure/monitoring"
	"shopping-list-engine/internal/pkg/common"

	"go.uber.org/zap"
)

// closer 關閉時需要釋放的資源
type closer interface {
	Close() error
}

// resources 啟動過程中開啟的資源，依開啟的相反順序關閉
type resources struct {
	closers []closer
	pingers map[string]health.Pinger
}

func newResources() *resources {
	return &resources{pingers: make(map[string]health.Pinger)}
}

// track 登記可關閉或可檢查就緒的資源
func (r *resources) track(name string, v interface{}) {
	if c, ok := v.(closer); ok {
		r.closers = append(r.closers, c)
	}
	if p, ok := v.(health.Pinger); ok {
		r.pingers[name] = p
	}
}

func (r *resources) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			common.LogWarn("Failed to close resource", zap.Error(err))
		}
	}
	r.closers = nil
}

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// os.Exit 不執行 defer，所有清理都在 run 內完成
	if err := run(cfg); err != nil {
		common.LogError("Server stopped with error", zap.Error(err))
		common.Sync()
		os.Exit(1)
	}
	common.Sync()
}

// run 啟動服務直到收到中斷信號；回傳前關閉所有資源
func run(cfg *config.Config) error {
	common.LogInfo("載入設定",
		zap.Bool("canonical_enabled", cfg.Canonical.Enabled),
		zap.String("canonical_model", cfg.Canonical.Model),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.String("catalog_driver", cfg.Catalog.Driver),
	)

	res := newResources()
	defer res.Close()

	srv, err := build(context.Background(), cfg, res)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待中斷信號或監聽失敗
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("starting server: %w", err)
	case <-quit:
	}

	common.LogInfo("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	common.LogInfo("Server exited")
	return nil
}

// build 組裝目錄、正規化服務與路由；開啟的資源登記在 res
func build(ctx context.Context, cfg *config.Config, res *resources) (*http.Server, error) {
	store, err := openCatalog(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	res.track("catalog", store)

	metrics := monitoring.NewMetrics()

	// 正規化服務：未啟用時不掛緩存，避免原名寫入共用緩存
	var client canonical.Client = canonical.Noop{}
	serviceOpts := []canonical.ServiceOption{canonical.WithObserver(metrics)}
	if cfg.Canonical.Enabled {
		client = canonical.NewOpenRouterClient(cfg)
		cache, err := openCache(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("initializing canonical cache: %w", err)
		}
		if cache != nil {
			serviceOpts = append(serviceOpts, canonical.WithCache(cache))
			res.track("cache", cache)
		}
	}
	canonicalSvc := canonical.NewService(client, cfg.Canonical.Timeout, serviceOpts...)

	builder := shopping.NewBuilder(store, canonicalSvc, shopping.WithObserver(metrics))

	router, err := api.SetupRouter(cfg, api.Dependencies{
		Builder:   builder,
		Canonical: canonicalSvc,
		Metrics:   metrics,
		Pingers:   res.pingers,
	})
	if err != nil {
		return nil, fmt.Errorf("setting up router: %w", err)
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, nil
}

// openCatalog 依設定開啟食譜目錄，需要時寫入範例食譜
func openCatalog(ctx context.Context, cfg *config.Config) (catalog.Store, error) {
	var (
		store  catalog.Store
		writer catalog.Writer
	)

	switch cfg.Catalog.Driver {
	case config.CatalogMemory:
		mem := catalog.NewMemoryStore()
		store, writer = mem, mem
	default:
		sqlStore, err := catalog.OpenSQLStore(cfg.Catalog.Driver, cfg.Catalog.DSN)
		if err != nil {
			return nil, err
		}
		store, writer = sqlStore, sqlStore
	}

	if cfg.Catalog.Seed {
		n, err := catalog.Seed(ctx, writer)
		if err != nil {
			return nil, err
		}
		common.LogInfo("範例食譜已寫入", zap.Int("recipes", n), zap.String("driver", cfg.Catalog.Driver))
	}
	return store, nil
}

// openCache 依設定建立正規化緩存，停用時回傳 nil
func openCache(ctx context.Context, cfg *config.Config) (canonical.Cache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}

	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		redisCache, err := canonical.NewRedisCache(ctx, canonical.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			Prefix:   cfg.Cache.KeyPrefix,
			TTL:      cfg.Cache.TTL,
		})
		if err != nil {
			return nil, err
		}
		return redisCache, nil
	default:
		return canonical.NewMemoryCache(cfg.Cache.MaxSize, cfg.Cache.TTL, cfg.Cache.CleanupInterval), nil
	}
}
