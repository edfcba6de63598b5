package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV is the durable KV implementation backed by a Redis server. All
// operations run under a bounded per-call timeout so a slow store cannot
// hold a request open indefinitely.
type RedisKV struct {
	client    *redis.Client
	opTimeout time.Duration
}

// NewRedisKV connects to the Redis instance named by url
// (redis://host:port/db form) and verifies the connection with a ping.
func NewRedisKV(ctx context.Context, url, password string, db int, opTimeout time.Duration) (*RedisKV, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	if db != 0 {
		opts.DB = db
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisKV{client: client, opTimeout: opTimeout}, nil
}

func (s *RedisKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *RedisKV) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if ttl <= 0 {
		return s.client.Incr(ctx, key).Result()
	}

	// Pipeline the increment with EXPIRE NX so the counter can never be
	// left without an expiry. NX also repairs a counter that lost its TTL.
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// TTL reports the remaining lifetime of key, or a negative duration when
// the key is missing or has no expiry.
func (s *RedisKV) TTL(ctx context.Context, key string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	return s.client.TTL(ctx, key).Result()
}

func (s *RedisKV) Close() error {
	return s.client.Close()
}
