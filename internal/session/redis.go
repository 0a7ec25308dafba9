package session

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces session keys in a shared redis
const DefaultRedisPrefix = "constructcycle:"

// RedisStorage keeps entries in redis without expiry, so every process that
// points at the same redis shares one session.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage creates a redis-backed storage. An empty prefix uses
// DefaultRedisPrefix.
func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStorage{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisStorage) key(k string) string {
	return r.prefix + k
}

// Get returns the value stored under key
func (r *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "redis get %s", key)
	}
	return val, true, nil
}

// Set stores value under key
func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", key)
	}
	return nil
}

// Delete removes key
func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return errors.Wrapf(err, "redis del %s", key)
	}
	return nil
}
