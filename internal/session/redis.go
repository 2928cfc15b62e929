package session

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// redisKV implements KV on a Redis client. Values are stored without a
// TTL; the session and media token live until explicitly cleared.
type redisKV struct {
	client *redis.Client
}

// NewRedisKV wraps a Redis client as session storage.
func NewRedisKV(client *redis.Client) KV {
	return &redisKV{client: client}
}

func (r *redisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

func (r *redisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *redisKV) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
