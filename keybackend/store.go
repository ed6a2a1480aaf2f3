package keybackend

import (
	"context"
	"fmt"

	"github.com/sagarc03/edgeserve"
	"github.com/sagarc03/edgeserve/database"
	"github.com/sagarc03/edgeserve/internal/redisconn"
)

// Config selects and configures the display name backend.
type Config struct {
	Type     string          `mapstructure:"type" yaml:"type" validate:"required,oneof=map redis sqlite postgres"`
	Inline   []NamePair      `mapstructure:"inline" yaml:"inline"` // Inline pairs for the map backend
	File     string          `mapstructure:"file" yaml:"file"`     // JSON file with pairs for the map backend
	Redis    RedisConfig     `mapstructure:"redis" yaml:"redis"`
	Database database.Config `mapstructure:"database" yaml:"database"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	redisconn.Config `mapstructure:",squash" yaml:",inline"`
	Prefix           string `mapstructure:"prefix" yaml:"prefix"`
}

// NewNameStore builds the configured backend. The returned close function
// releases its connections and is never nil.
func NewNameStore(ctx context.Context, cfg Config) (edgeserve.NameRepo, func() error, error) {
	switch cfg.Type {
	case "map":
		store, err := NewMapNameStoreFromConfig(cfg)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { return nil }, nil

	case "redis":
		client, err := redisconn.Connect(ctx, cfg.Redis.Config)
		if err != nil {
			return nil, nil, fmt.Errorf("new name store: %w", err)
		}
		return NewRedisNameStore(client, cfg.Redis.Prefix), client.Close, nil

	case "sqlite", "postgres":
		dbCfg := cfg.Database
		dbCfg.Type = cfg.Type
		db, err := database.Open(ctx, dbCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("new name store: %w", err)
		}
		return db.GetRepo(), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("new name store %q: %w", cfg.Type, ErrUnsupportedType)
	}
}

// NewMapNameStoreFromConfig loads names from both inline config and file (if
// specified). File entries take precedence over inline entries with the same key.
func NewMapNameStoreFromConfig(cfg Config) (*MapNameStore, error) {
	names := make(map[string]string)

	for _, p := range cfg.Inline {
		if p.Key != "" && p.Name != "" {
			names[p.Key] = p.Name
		}
	}

	if cfg.File != "" {
		fileNames, err := LoadNamesFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		for k, v := range fileNames {
			names[k] = v
		}
	}

	return NewMapNameStore(names), nil
}
