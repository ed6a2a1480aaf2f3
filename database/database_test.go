package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/edgeserve"
	"github.com/sagarc03/edgeserve/database"
)

// Test helpers

func newTestConfig(tableName string) database.Config {
	return database.Config{
		Type:   "sqlite",
		DSN:    ":memory:",
		Tables: edgeserve.Tables{Names: tableName},
	}
}

func setupTestDB(t *testing.T, tableName string) database.Database {
	t.Helper()
	ctx := context.Background()

	db, err := database.Connect(ctx, newTestConfig(tableName))
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return db
}

// Tests for Connect routing logic

func TestConnect_SQLite(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t, "test_names")

	assert.NoError(t, db.Ping(context.Background()))
}

func TestConnect_InvalidType(t *testing.T) {
	t.Parallel()

	cfg := database.Config{
		Type:   "invalid",
		DSN:    "whatever",
		Tables: edgeserve.Tables{Names: "test_names"},
	}

	_, err := database.Connect(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestConnect_InvalidTableName(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig("Bad-Name")

	_, err := database.Connect(context.Background(), cfg)
	assert.Error(t, err)
}

// Tests for Database interface methods

func TestDatabase_Migrate_Idempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := setupTestDB(t, "migrate_idem_test")

	require.NoError(t, db.Migrate(ctx))
	assert.NoError(t, db.Migrate(ctx), "migrate should be idempotent")
}

func TestDatabase_Validate_BeforeMigration(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t, "validate_before_test")

	assert.Error(t, db.Validate(context.Background()), "validate should fail without tables")
}

func TestDatabase_Validate_AfterMigration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := setupTestDB(t, "validate_after_test")
	require.NoError(t, db.Migrate(ctx))

	assert.NoError(t, db.Validate(ctx), "validate should pass after migration")
}

func TestDatabase_GetRepo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := setupTestDB(t, "getrepo_test")
	require.NoError(t, db.Migrate(ctx))

	repo := db.GetRepo()
	require.NoError(t, repo.Set(ctx, "abc123.zip", "song.zip"))

	name, err := repo.Get(ctx, "abc123.zip")
	require.NoError(t, err)
	assert.Equal(t, "song.zip", name)
}

func TestDatabase_Close(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := database.Connect(ctx, newTestConfig("close_test"))
	require.NoError(t, err)

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(ctx), "ping should fail after close")
}

func TestOpen_AutoMigrate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := newTestConfig("open_test")
	cfg.AutoMigrate = true

	db, err := database.Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.GetRepo().Get(ctx, "missing")
	assert.ErrorIs(t, err, edgeserve.ErrNotFound)
}

func TestOpen_WithoutMigrationFailsValidation(t *testing.T) {
	t.Parallel()

	_, err := database.Open(context.Background(), newTestConfig("open_nomigrate_test"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate database schema")
}
