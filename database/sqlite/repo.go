// Package sqlite implements the display name repository using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sagarc03/edgeserve"
)

type repo struct {
	db        *sql.DB
	tableName string
}

func (r *repo) Get(ctx context.Context, key string) (string, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT name FROM %s WHERE key = ?`, quoteIdentifier(r.tableName))

	var name string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", edgeserve.ErrNotFound
		}
		return "", fmt.Errorf("get: %w", err)
	}

	return name, nil
}

func (r *repo) Set(ctx context.Context, key, name string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (key, name, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at`,
		quoteIdentifier(r.tableName))

	if _, err := r.db.ExecContext(ctx, query, key, name, now); err != nil {
		return fmt.Errorf("set: %w", err)
	}

	return nil
}
