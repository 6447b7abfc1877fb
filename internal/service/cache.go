package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"scene-service/internal/metrics"
)

// cache is a JSON cache-aside helper. A nil client turns every call into a miss.
type cache struct {
	redis *redis.Client
}

func (c cache) get(ctx context.Context, key string, dst any) bool {
	if c.redis == nil {
		return false
	}
	raw, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("cache read failed", "key", key, "error", err)
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return false
	}
	slog.Debug("cache hit", "key", key)
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return true
}

func (c cache) set(ctx context.Context, key string, value any, ttl time.Duration) {
	if c.redis == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		slog.Error("failed to set cache", "key", key, "error", err)
	}
}
