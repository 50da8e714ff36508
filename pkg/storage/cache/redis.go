package cache

import (
	"context"
	"errors"
	"time"

	"github.com/brimdata/airindex/pkg/storage"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
)

type RedisCache struct {
	engine
}

var _ storage.Engine = (*RedisCache)(nil)

// NewRedisCache returns an engine that keeps reads of sealed objects in
// Redis.  A zero expiry should only be used when Redis is configured with
// a key eviction policy.
func NewRedisCache(e storage.Engine, client *redis.Client, cacheable Cacheable, expiry time.Duration, reg prometheus.Registerer) *RedisCache {
	return &RedisCache{
		engine: engine{
			Engine:    e,
			metrics:   newMetrics(reg),
			store:     &redisStore{client: client, expiry: expiry},
			cacheable: cacheable,
		},
	}
}

type redisStore struct {
	client *redis.Client
	expiry time.Duration
}

func (r *redisStore) get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *redisStore) put(ctx context.Context, key string, b []byte) error {
	return r.client.Set(ctx, key, b, r.expiry).Err()
}
