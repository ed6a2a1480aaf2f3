// Package cache provides ResponseCache implementations for edgeserve.
//
// Entries expire after a fixed TTL (edgeserve.CacheTTL unless configured
// otherwise); an expired entry is reported as a miss. Put always overwrites,
// so repeated writes of the same response are harmless.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/sagarc03/edgeserve"
	"github.com/sagarc03/edgeserve/internal/redisconn"
)

// Config selects and configures the response cache.
type Config struct {
	Type           string        `mapstructure:"type" yaml:"type" validate:"required,oneof=memory redis none"`
	TTL            time.Duration `mapstructure:"ttl" yaml:"ttl" validate:"min=0"`
	Capacity       uint64        `mapstructure:"capacity" yaml:"capacity"`
	MaxObjectBytes int64         `mapstructure:"max_object_bytes" yaml:"max_object_bytes" validate:"min=0"`
	Redis          RedisConfig   `mapstructure:"redis" yaml:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	redisconn.Config `mapstructure:",squash" yaml:",inline"`
	Prefix           string `mapstructure:"prefix" yaml:"prefix"`
}

// New builds the configured cache. A "none" cache yields a nil ResponseCache.
// The returned close function is never nil.
func New(ctx context.Context, cfg Config) (edgeserve.ResponseCache, func() error, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = edgeserve.CacheTTL
	}

	switch cfg.Type {
	case "memory":
		m := NewMemory(ttl, cfg.Capacity)
		return m, func() error { m.Stop(); return nil }, nil

	case "redis":
		client, err := redisconn.Connect(ctx, cfg.Redis.Config)
		if err != nil {
			return nil, nil, fmt.Errorf("new cache: %w", err)
		}
		return NewRedis(client, cfg.Redis.Prefix, ttl), client.Close, nil

	case "none":
		return nil, func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("new cache: unsupported type: %s", cfg.Type)
	}
}
