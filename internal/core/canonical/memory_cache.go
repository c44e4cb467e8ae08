package canonical

import (
	"context"
	"sync"
	"time"

	"shopping-list-engine/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryCache 行程內緩存，可同時供多個清單建立使用
type MemoryCache struct {
	mu      sync.RWMutex
	store   map[string]cacheEntry
	stats   cacheStats
	maxSize int
	ttl     time.Duration

	stop      chan struct{}
	closeOnce sync.Once
}

// cacheEntry 緩存條目
type cacheEntry struct {
	value       string
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// cacheStats 緩存統計
type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewMemoryCache 創建記憶體緩存；cleanupInterval > 0 時啟動清理協程
func NewMemoryCache(maxSize int, ttl, cleanupInterval time.Duration) *MemoryCache {
	c := &MemoryCache{
		store:   make(map[string]cacheEntry),
		maxSize: maxSize,
		ttl:     ttl,
		stop:    make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go c.startCleanup(cleanupInterval)
	}

	common.LogInfo("正規化快取已初始化",
		zap.String("backend", "memory"),
		zap.Int("最大容量", maxSize),
		zap.Duration("存活時間", ttl),
		zap.Duration("清理間隔", cleanupInterval),
	)
	return c
}

// Get 獲取緩存值
func (c *MemoryCache) Get(_ context.Context, name string) (string, error) {
	key := cacheKey(name)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.store[key]
	if !ok {
		c.stats.misses++
		common.LogCacheMiss("memory", key)
		return "", common.ErrCacheMiss
	}

	if c.ttl > 0 && time.Now().After(entry.expiresAt) {
		delete(c.store, key)
		c.stats.evictions++
		c.stats.misses++
		common.LogCacheMiss("memory", key)
		return "", common.ErrCacheMiss
	}

	entry.lastAccess = time.Now()
	entry.accessCount++
	c.store[key] = entry
	c.stats.hits++
	common.LogCacheHit("memory", key)
	return entry.value, nil
}

// Set 設置緩存值，同名後寫覆蓋先寫
func (c *MemoryCache) Set(_ context.Context, name, canonical string) error {
	key := cacheKey(name)
	if key == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && c.maxSize > 0 && len(c.store) >= c.maxSize {
		c.cleanup()
		if len(c.store) >= c.maxSize {
			c.evictLRU()
		}
	}

	now := time.Now()
	c.store[key] = cacheEntry{
		value:      canonical,
		expiresAt:  now.Add(c.ttl),
		lastAccess: now,
	}
	return nil
}

// Clear 清空所有條目，統計保留
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.store)
	c.store = make(map[string]cacheEntry)
	common.LogInfo("正規化快取已清空", zap.Int("清除數量", n))
	return nil
}

// Len 目前條目數
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

func (c *MemoryCache) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.cleanup()
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}

// cleanup 清理過期條目，呼叫端需持有寫鎖
func (c *MemoryCache) cleanup() int {
	if c.ttl <= 0 {
		return 0
	}

	now := time.Now()
	count := 0
	for key, entry := range c.store {
		if now.After(entry.expiresAt) {
			delete(c.store, key)
			count++
			c.stats.evictions++
		}
	}

	if count > 0 {
		common.LogDebug("Cleaned up expired cache entries",
			zap.Int("count", count),
			zap.Int("remaining_size", len(c.store)),
		)
	}
	return count
}

// evictLRU 淘汰訪問次數最少、最久未訪問的條目
func (c *MemoryCache) evictLRU() {
	var (
		oldestKey    string
		oldestAccess time.Time
		lowestCount  int
	)
	for key, entry := range c.store {
		if oldestKey == "" ||
			entry.accessCount < lowestCount ||
			(entry.accessCount == lowestCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(c.store, oldestKey)
		c.stats.evictions++
		common.LogDebug("快取已淘汰(LRU)", zap.String("鍵", oldestKey))
	}
}

// Stats 獲取緩存統計信息
func (c *MemoryCache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"backend":   "memory",
		"size":      len(c.store),
		"max_size":  c.maxSize,
		"hits":      c.stats.hits,
		"misses":    c.stats.misses,
		"evictions": c.stats.evictions,
		"hit_ratio": hitRatio(c.stats.hits, c.stats.misses),
	}
}

// Close 停止清理協程
func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() { close(c.stop) })
	return nil
}
