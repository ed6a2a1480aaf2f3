package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/edgeserve"
	"github.com/sagarc03/edgeserve/database/postgres"
	"github.com/sagarc03/edgeserve/database/sqlite"
)

// Config holds the configuration for connecting to a name store database.
type Config struct {
	// Type specifies the database type: "sqlite" or "postgres"
	Type string `mapstructure:"type" yaml:"type"`
	// DSN is the data source name (connection string)
	DSN string `mapstructure:"dsn" yaml:"dsn"`
	// Tables holds the table names
	Tables edgeserve.Tables `mapstructure:"tables" yaml:"tables"`
	// AutoMigrate creates missing tables on connect
	AutoMigrate bool `mapstructure:"auto_migrate" yaml:"auto_migrate"`
}

// Database is a connected SQL backend for display names.
type Database interface {
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Validate(ctx context.Context) error
	GetRepo() edgeserve.NameRepo
	Close() error
}

// Connect opens the configured backend. Tables are validated before any
// connection is made.
func Connect(ctx context.Context, cfg Config) (Database, error) {
	if err := cfg.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	switch cfg.Type {
	case "sqlite":
		db, err := sqlite.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// Open connects, optionally migrates, and validates the schema, returning a
// ready-to-use Database. The caller must Close it.
func Open(ctx context.Context, cfg Config) (Database, error) {
	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if cfg.AutoMigrate {
		if err = db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	if err = db.Validate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("validate database schema: %w", err)
	}

	return db, nil
}
