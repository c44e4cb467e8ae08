package canonical

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"shopping-list-engine/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisCache 多個實例共用的緩存
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	hits   int64
	misses int64
	errors int64
}

// RedisOptions Redis 連線設定
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// NewRedisCache 連線並測試 Redis
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("正規化快取已初始化",
		zap.String("backend", "redis"),
		zap.String("addr", opts.Addr),
		zap.Duration("存活時間", opts.TTL),
	)
	return &RedisCache{client: client, prefix: opts.Prefix, ttl: opts.TTL}, nil
}

func (c *RedisCache) key(name string) string {
	return c.prefix + cacheKey(name)
}

// Get 獲取緩存
func (c *RedisCache) Get(ctx context.Context, name string) (string, error) {
	key := c.key(name)

	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			atomic.AddInt64(&c.misses, 1)
			common.LogCacheMiss("redis", key)
			return "", common.ErrCacheMiss
		}
		atomic.AddInt64(&c.errors, 1)
		return "", fmt.Errorf("failed to get cache: %w", err)
	}

	atomic.AddInt64(&c.hits, 1)
	common.LogCacheHit("redis", key)
	return value, nil
}

// Set 設置緩存
func (c *RedisCache) Set(ctx context.Context, name, canonical string) error {
	if cacheKey(name) == "" {
		return nil
	}
	if err := c.client.Set(ctx, c.key(name), canonical, c.ttl).Err(); err != nil {
		atomic.AddInt64(&c.errors, 1)
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Clear 以 SCAN 刪除前綴下的所有鍵
func (c *RedisCache) Clear(ctx context.Context) error {
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
			removed += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	common.LogInfo("正規化快取已清空", zap.String("backend", "redis"), zap.Int("清除數量", removed))
	return nil
}

// Stats 獲取緩存統計信息
func (c *RedisCache) Stats() map[string]interface{} {
	hits, misses := atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
	return map[string]interface{}{
		"backend":   "redis",
		"hits":      hits,
		"misses":    misses,
		"errors":    atomic.LoadInt64(&c.errors),
		"hit_ratio": hitRatio(hits, misses),
	}
}

// Ping 檢查連線，供就緒檢查使用
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close 關閉連線
func (c *RedisCache) Close() error {
	return c.client.Close()
}
