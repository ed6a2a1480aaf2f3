package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sagarc03/edgeserve"
)

// DefaultRedisPrefix namespaces cached responses in redis.
const DefaultRedisPrefix = "resp:"

// Redis stores JSON-encoded responses with a server-side expiry, so every
// instance sharing the server sees the same entries.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedis(client redis.UniversalClient, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) Match(ctx context.Context, key string) (edgeserve.CachedResponse, bool, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return edgeserve.CachedResponse{}, false, nil
	}
	if err != nil {
		return edgeserve.CachedResponse{}, false, fmt.Errorf("match cached response: %w", err)
	}

	var resp edgeserve.CachedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return edgeserve.CachedResponse{}, false, fmt.Errorf("decode cached response: %w", err)
	}

	return resp, true, nil
}

func (r *Redis) Put(ctx context.Context, key string, resp edgeserve.CachedResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode cached response: %w", err)
	}

	if err := r.client.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("put cached response: %w", err)
	}

	return nil
}
