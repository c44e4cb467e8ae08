package middleware

import (
	"fmt"
	"math"
	"sync"
	"time"

	"shopping-list-engine/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter 每個用戶端一個令牌桶
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	capacity float64
	rate     float64 // 每秒補充的令牌
	idleTTL  time.Duration
	now      func() time.Time
}

type bucket struct {
	tokens   float64
	lastTime time.Time
}

// NewRateLimiter 創建新的限流器：window 內最多 requests 次
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets:  make(map[string]*bucket),
		capacity: float64(requests),
		rate:     float64(requests) / window.Seconds(),
		idleTTL:  2 * window,
		now:      time.Now,
	}
}

// Allow 檢查 key 是否還有令牌
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.capacity, lastTime: now}
		rl.buckets[key] = b
		rl.evictIdle(now)
	}

	elapsed := now.Sub(b.lastTime).Seconds()
	b.tokens = math.Min(rl.capacity, b.tokens+elapsed*rl.rate)
	b.lastTime = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// evictIdle 移除閒置的桶，呼叫端需持有鎖
func (rl *RateLimiter) evictIdle(now time.Time) {
	for key, b := range rl.buckets {
		if now.Sub(b.lastTime) > rl.idleTTL {
			delete(rl.buckets, key)
		}
	}
}

// RateLimit 以用戶端 IP 限流的中間件
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	limiter := NewRateLimiter(requests, window)

	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			common.LogWarn("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", int(math.Ceil(window.Seconds()))))
			abortWithError(c, common.ErrTooManyRequests)
			return
		}

		c.Next()
	}
}
