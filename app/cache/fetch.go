package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// GeoKey builds a cache key from an operation name and coordinates rounded
// to two decimals, so nearby lookups share one cache entry.
func GeoKey(op string, lat, lon float64) string {
	return fmt.Sprintf("%s:%.2f:%.2f", op, lat, lon)
}

// Fetch implements the cache-first read cycle: return the cached value when
// present, otherwise call fill, store its result under key with the given
// TTL, and return it. Cache errors degrade to a direct fill call; a failed
// write never fails the read.
func Fetch[T any](ctx context.Context, store Store, key string, ttl time.Duration, fill func(context.Context) (T, error)) (T, error) {
	var zero T

	raw, hit, err := store.Get(ctx, key)
	if err != nil {
		slog.Warn("Cache read failed, fetching directly", "key", key, "error", err)
	} else if hit {
		var cached T
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			slog.Debug("Cache hit", "key", key)
			return cached, nil
		}
		// Unreadable entry: drop it and refetch.
		_ = store.Delete(ctx, key)
	}

	value, err := fill(ctx)
	if err != nil {
		return zero, err
	}

	if err := store.Set(ctx, key, value, ttl); err != nil {
		slog.Warn("Cache write failed", "key", key, "error", err)
	}

	return value, nil
}
