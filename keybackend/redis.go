package keybackend

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sagarc03/edgeserve"
)

// DefaultRedisPrefix namespaces display name keys in redis.
const DefaultRedisPrefix = "name:"

// RedisNameStore keeps display names as plain string values under prefix+key.
type RedisNameStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisNameStore creates a store on an existing client. An empty prefix
// falls back to DefaultRedisPrefix.
func NewRedisNameStore(client redis.UniversalClient, prefix string) *RedisNameStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisNameStore{client: client, prefix: prefix}
}

func (s *RedisNameStore) Get(ctx context.Context, key string) (string, error) {
	name, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("display name for %s: %w", key, edgeserve.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get display name from redis: %w", err)
	}
	return name, nil
}

func (s *RedisNameStore) Set(ctx context.Context, key, name string) error {
	if err := s.client.Set(ctx, s.prefix+key, name, 0).Err(); err != nil {
		return fmt.Errorf("set display name in redis: %w", err)
	}
	return nil
}
