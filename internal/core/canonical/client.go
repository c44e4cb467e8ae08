package canonical

import (
	"context"
)

// Client 外部正規化服務：一批名稱對應到合併後的正規名稱
// 回傳的對應可以缺少部分名稱
type Client interface {
	Canonicalize(ctx context.Context, names []string) (map[string]string, error)
}

// ClientFunc 讓一般函式實作 Client
type ClientFunc func(ctx context.Context, names []string) (map[string]string, error)

func (f ClientFunc) Canonicalize(ctx context.Context, names []string) (map[string]string, error) {
	return f(ctx, names)
}

// Noop 不呼叫外部服務，原樣回傳
type Noop struct{}

func (Noop) Canonicalize(_ context.Context, names []string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	for _, n := range names {
		out[n] = n
	}
	return out, nil
}
