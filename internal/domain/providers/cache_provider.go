package providers

import (
	"context"
	"time"
)

// CacheProvider stores JSON-encodable values. A disabled cache misses on
// every read and accepts every write.
type CacheProvider interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}
