package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shopping-list-engine/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Debug: true, Version: "test"},
		Server: config.ServerConfig{Port: 0, MaxBodyBytes: 1 << 20},
		Canonical: config.CanonicalConfig{
			Model:   "test-model",
			Timeout: time.Second,
		},
		Cache: config.CacheConfig{
			Enabled:         true,
			Backend:         config.CacheBackendMemory,
			MaxSize:         10,
			TTL:             time.Minute,
			CleanupInterval: time.Minute,
		},
		Catalog:     config.CatalogConfig{Driver: config.CatalogMemory, Seed: true},
		RateLimit:   config.RateLimitConfig{Requests: 10, Window: time.Minute},
		DedupWindow: time.Second,
	}
}

type closeRecorder struct {
	name  string
	order *[]string
}

func (c closeRecorder) Close() error {
	*c.order = append(*c.order, c.name)
	return nil
}

func TestBuildServesLiveness(t *testing.T) {
	res := newResources()
	defer res.Close()

	srv, err := build(context.Background(), testConfig(), res)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBuildFailureLeavesOpenedResourcesClosable(t *testing.T) {
	cfg := testConfig()
	cfg.Catalog = config.CatalogConfig{Driver: config.CatalogSQLite, DSN: ":memory:"}
	cfg.Canonical.Enabled = true
	cfg.Canonical.APIKey = "test"
	cfg.Cache.Backend = config.CacheBackendRedis
	cfg.Cache.RedisAddr = "127.0.0.1:1"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res := newResources()
	_, err := build(ctx, cfg, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "canonical cache")

	// 目錄在緩存失敗前已開啟，仍由 res 負責關閉
	catalog, ok := res.pingers["catalog"]
	require.True(t, ok)
	require.NoError(t, catalog.Ping(ctx))
	require.Len(t, res.closers, 1)

	res.Close()
	assert.Error(t, catalog.Ping(ctx))
	assert.Empty(t, res.closers)
}

func TestResourcesCloseInReverseOrder(t *testing.T) {
	var order []string
	res := newResources()
	res.track("first", closeRecorder{name: "first", order: &order})
	res.track("second", closeRecorder{name: "second", order: &order})
	res.track("ignored", struct{}{})

	res.Close()
	assert.Equal(t, []string{"second", "first"}, order)
	assert.Empty(t, res.pingers)
}
