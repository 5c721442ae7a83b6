package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ohbot666/connected-montreal-ai/internal/pkg/logger"
)

// RedisStore keeps the live-data payload in a key-value store for
// deployments where the process is not the only reader. Freshness
// rides on the key's TTL, so Get needs no timestamp bookkeeping.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore creates a redis-backed store.
func NewRedisStore(client *redis.Client, key string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, key: key, ttl: ttl}
}

// Get returns the cached payload when the key has not expired.
func (s *RedisStore) Get(ctx context.Context) (LiveData, bool) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("redis cache read failed", "key", s.key, "error", err.Error())
		}
		return LiveData{}, false
	}

	var data LiveData
	if err := json.Unmarshal(raw, &data); err != nil {
		logger.Warn("redis cache payload unreadable", "key", s.key, "error", err.Error())
		return LiveData{}, false
	}
	return data, true
}

// Put overwrites the key with the new payload and resets its TTL.
func (s *RedisStore) Put(ctx context.Context, data LiveData) {
	raw, err := json.Marshal(data)
	if err != nil {
		logger.Error("redis cache marshal failed", "error", err.Error())
		return
	}
	if err := s.client.Set(ctx, s.key, raw, s.ttl).Err(); err != nil {
		logger.Error("redis cache write failed", "key", s.key, "error", err.Error())
	}
}

// Invalidate deletes the key so the next Get misses.
func (s *RedisStore) Invalidate(ctx context.Context) {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		logger.Warn("redis cache invalidate failed", "key", s.key, "error", err.Error())
	}
}
