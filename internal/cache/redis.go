package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-meme-detector/internal/storage"
)

// RedisStore keeps JSON-encoded values in Redis so several API replicas share one cache.
// Redis errors are logged and reported as misses.
type RedisStore[V any] struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	logger *logrus.Logger
}

var _ storage.Store[int] = (*RedisStore[int])(nil)

// RedisConfig holds configuration for a Redis-backed store
type RedisConfig struct {
	Client redis.Cmdable
	Prefix string
	TTL    time.Duration
	Logger *logrus.Logger
}

func NewRedisStore[V any](cfg RedisConfig) (*RedisStore[V], error) {
	if cfg.Client == nil {
		return nil, errors.New("redis client is nil")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("redis store ttl must be positive")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &RedisStore[V]{
		client: cfg.Client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
		logger: cfg.Logger,
	}, nil
}

func (r *RedisStore[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false
	}
	if err != nil {
		r.logger.WithError(err).WithField("key", r.prefix+key).Warn("redis cache get failed")
		return zero, false
	}

	var v V
	if err := json.Unmarshal(b, &v); err != nil {
		r.logger.WithError(err).WithField("key", r.prefix+key).Warn("redis cache entry undecodable")
		return zero, false
	}
	return v, true
}

func (r *RedisStore[V]) Set(ctx context.Context, key string, value V) {
	b, err := json.Marshal(value)
	if err != nil {
		r.logger.WithError(err).WithField("key", r.prefix+key).Warn("redis cache marshal failed")
		return
	}
	if err := r.client.Set(ctx, r.prefix+key, b, r.ttl).Err(); err != nil {
		r.logger.WithError(err).WithField("key", r.prefix+key).Warn("redis cache set failed")
	}
}

func (r *RedisStore[V]) Has(ctx context.Context, key string) bool {
	n, err := r.client.Exists(ctx, r.prefix+key).Result()
	if err != nil {
		r.logger.WithError(err).WithField("key", r.prefix+key).Warn("redis cache exists failed")
		return false
	}
	return n > 0
}
