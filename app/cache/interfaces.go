package cache

import (
	"context"
	"time"
)

// Store is the TTL key/value store every read operation consults before
// touching the network. Values are stored as JSON strings.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
