package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces preference keys in a shared Redis.
const DefaultRedisPrefix = "currency:pref:"

// Redis keeps preferences in Redis so every instance of a service sees the
// same choice.
type Redis struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// RedisOption customizes a Redis store.
type RedisOption func(*Redis)

// WithRedisPrefix replaces DefaultRedisPrefix.
func WithRedisPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// WithRedisTTL expires preferences after ttl. Zero keeps them forever.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// NewRedis wraps an existing client. The caller owns the client lifecycle.
func NewRedis(client redis.Cmdable, opts ...RedisOption) *Redis {
	r := &Redis{client: client, prefix: DefaultRedisPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// DialRedis connects to addr and checks the connection with a ping.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	}
	return client, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
