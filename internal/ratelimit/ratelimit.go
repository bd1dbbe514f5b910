package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// #region ttl-store

// TTLStore is an externally owned counter store keyed by client
// identity. The engine process holds no request counters of its own;
// expiry is the store's responsibility.
type TTLStore interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// #endregion ttl-store

// #region redis-store

// RedisStore counts in Redis with per-key TTLs.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Incr increments the key and sets its TTL on first touch.
func (s *RedisStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rate incr %s: %w", key, err)
	}
	return incr.Val(), nil
}

// #endregion redis-store

// #region limiter

// Limiter applies a fixed-window request cap per client identity.
type Limiter struct {
	store  TTLStore
	max    int64
	window time.Duration
}

// NewLimiter returns a limiter allowing max requests per window.
func NewLimiter(store TTLStore, max int64, window time.Duration) *Limiter {
	return &Limiter{store: store, max: max, window: window}
}

// Allow reports whether the client may proceed. On store failure the
// request is allowed and the error is returned for logging.
func (l *Limiter) Allow(ctx context.Context, clientID string) (bool, error) {
	n, err := l.store.Incr(ctx, "skane:rate:"+clientID, l.window)
	if err != nil {
		return true, err
	}
	return n <= l.max, nil
}

// #endregion limiter
