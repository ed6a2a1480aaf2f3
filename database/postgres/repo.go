// Package postgres implements the display name repository using PostgreSQL
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/edgeserve"
)

type repo struct {
	pool      *pgxpool.Pool
	tableName string
}

func (r *repo) Get(ctx context.Context, key string) (string, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT name FROM %s WHERE key = $1`, pgx.Identifier{r.tableName}.Sanitize())

	var name string
	err := r.pool.QueryRow(ctx, query, key).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", edgeserve.ErrNotFound
		}
		return "", fmt.Errorf("get: %w", err)
	}

	return name, nil
}

func (r *repo) Set(ctx context.Context, key, name string) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (key, name, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()`,
		pgx.Identifier{r.tableName}.Sanitize())

	if _, err := r.pool.Exec(ctx, query, key, name); err != nil {
		return fmt.Errorf("set: %w", err)
	}

	return nil
}
