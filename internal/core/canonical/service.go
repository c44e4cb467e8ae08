package canonical

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopping-list-engine/internal/pkg/common"

	"go.uber.org/zap"
)

// 呼叫結果標籤
const (
	ResultOK       = "ok"
	ResultPartial  = "partial"
	ResultCached   = "cached"
	ResultError    = "error"
	ResultTimeout  = "timeout"
	ResultDisabled = "disabled"
)

// Observer 收集正規化呼叫指標
type Observer interface {
	ObserveCanonical(result string, duration time.Duration)
	ObserveCacheLookup(hit bool)
}

// Service 包裝外部 Client：緩存、逾時、失敗時回傳原名
type Service struct {
	client   Client
	cache    Cache
	timeout  time.Duration
	observer Observer
}

// ServiceOption 調整 Service
type ServiceOption func(*Service)

// WithCache 注入緩存
func WithCache(c Cache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithObserver 設定指標收集
func WithObserver(o Observer) ServiceOption {
	return func(s *Service) { s.observer = o }
}

// NewService 創建正規化服務；client 為 nil 時不呼叫外部服務
func NewService(client Client, timeout time.Duration, opts ...ServiceOption) *Service {
	s := &Service{client: client, timeout: timeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Canonicalize 回傳每個輸入名稱的正規名稱，任何失敗都退回原名
func (s *Service) Canonicalize(ctx context.Context, names []string) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		out[n] = n
	}

	pending := s.fromCache(ctx, names, out)
	if len(pending) == 0 {
		if len(names) > 0 {
			s.observe(ResultCached, 0)
		}
		return out
	}
	if s.client == nil {
		s.observe(ResultDisabled, 0)
		return out
	}

	start := time.Now()
	mapping, err := s.call(ctx, pending)
	duration := time.Since(start)
	common.LogCanonicalCall(len(pending), duration, err)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.observe(ResultTimeout, duration)
		} else {
			s.observe(ResultError, duration)
		}
		return out
	}

	lookup := make(map[string]string, len(mapping))
	for k, v := range mapping {
		lookup[cacheKey(k)] = v
	}

	result := ResultOK
	for _, name := range pending {
		canonical, ok := mapping[name]
		if !ok {
			canonical, ok = lookup[cacheKey(name)]
		}
		canonical = strings.TrimSpace(canonical)
		if !ok || canonical == "" {
			result = ResultPartial
			continue
		}
		out[name] = canonical
		s.remember(ctx, name, canonical)
	}
	s.observe(result, duration)
	return out
}

// fromCache 填入命中的名稱，回傳需要呼叫外部服務的名稱（去重、保留順序）
func (s *Service) fromCache(ctx context.Context, names []string, out map[string]string) []string {
	seen := make(map[string]bool, len(names))
	var pending []string
	for _, name := range names {
		if strings.TrimSpace(name) == "" || seen[name] {
			continue
		}
		seen[name] = true

		if s.cache != nil {
			value, err := s.cache.Get(ctx, name)
			if err == nil && strings.TrimSpace(value) != "" {
				out[name] = value
				s.observeLookup(true)
				continue
			}
			if err != nil && !errors.Is(err, common.ErrCacheMiss) {
				common.LogWarn("讀取正規化快取失敗", zap.String("name", name), zap.Error(err))
			}
			s.observeLookup(false)
		}
		pending = append(pending, name)
	}
	return pending
}

// call 在逾時內呼叫 Client；Client 未遵守 ctx 時也會如期返回
func (s *Service) call(ctx context.Context, names []string) (map[string]string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	type result struct {
		mapping map[string]string
		err     error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("canonical client panic: %v", r)}
			}
		}()
		mapping, err := s.client.Canonicalize(ctx, names)
		done <- result{mapping: mapping, err: err}
	}()

	select {
	case r := <-done:
		if r.err == nil && r.mapping == nil {
			return nil, fmt.Errorf("canonical client returned no mapping")
		}
		return r.mapping, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Service) remember(ctx context.Context, name, canonical string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, name, canonical); err != nil {
		common.LogWarn("寫入正規化快取失敗", zap.String("name", name), zap.Error(err))
	}
}

// ClearCache 清空緩存
func (s *Service) ClearCache(ctx context.Context) error {
	if s.cache == nil {
		return common.ErrCacheDisabled
	}
	return s.cache.Clear(ctx)
}

// CacheStats 緩存統計；未設定緩存時回傳 nil
func (s *Service) CacheStats() map[string]interface{} {
	if s.cache == nil {
		return nil
	}
	return s.cache.Stats()
}

func (s *Service) observe(result string, duration time.Duration) {
	if s.observer != nil {
		s.observer.ObserveCanonical(result, duration)
	}
}

func (s *Service) observeLookup(hit bool) {
	if s.observer != nil {
		s.observer.ObserveCacheLookup(hit)
	}
}
