package canonical

import (
	"context"
	"strings"

	"shopping-list-engine/internal/pkg/common"
)

// Cache 名稱到正規名稱的緩存；未命中時 Get 回傳 common.ErrCacheMiss
type Cache interface {
	Get(ctx context.Context, name string) (string, error)
	Set(ctx context.Context, name, canonical string) error
	Clear(ctx context.Context) error
	Stats() map[string]interface{}
}

// cacheKey 不分大小寫與變音符號
func cacheKey(name string) string {
	return common.FoldLower(strings.Join(strings.Fields(name), " "))
}

func hitRatio(hits, misses int64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}
