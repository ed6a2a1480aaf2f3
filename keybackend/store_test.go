package keybackend_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/edgeserve"
	"github.com/sagarc03/edgeserve/database"
	"github.com/sagarc03/edgeserve/internal/redisconn"
	"github.com/sagarc03/edgeserve/keybackend"
)

func TestNewNameStore_Map(t *testing.T) {
	path := writeNamesFile(t, `[{"key": "a.zip", "name": "from-file.zip"}]`)

	store, closeFn, err := keybackend.NewNameStore(context.Background(), keybackend.Config{
		Type: "map",
		Inline: []keybackend.NamePair{
			{Key: "a.zip", Name: "inline.zip"},
			{Key: "b.zip", Name: "b-inline.zip"},
		},
		File: path,
	})
	require.NoError(t, err)
	defer func() { _ = closeFn() }()

	ctx := context.Background()

	name, err := store.Get(ctx, "a.zip")
	require.NoError(t, err)
	assert.Equal(t, "from-file.zip", name, "file entries override inline entries")

	name, err = store.Get(ctx, "b.zip")
	require.NoError(t, err)
	assert.Equal(t, "b-inline.zip", name)
}

func TestNewNameStore_MapBadFile(t *testing.T) {
	_, _, err := keybackend.NewNameStore(context.Background(), keybackend.Config{
		Type: "map",
		File: "/nonexistent/names.json",
	})
	assert.Error(t, err)
}

func TestNewNameStore_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("name:a.zip", "song.zip"))

	store, closeFn, err := keybackend.NewNameStore(context.Background(), keybackend.Config{
		Type:  "redis",
		Redis: keybackend.RedisConfig{Config: redisconn.Config{Addr: mr.Addr()}},
	})
	require.NoError(t, err)
	defer func() { _ = closeFn() }()

	name, err := store.Get(context.Background(), "a.zip")
	require.NoError(t, err)
	assert.Equal(t, "song.zip", name)
}

func TestNewNameStore_SQLite(t *testing.T) {
	store, closeFn, err := keybackend.NewNameStore(context.Background(), keybackend.Config{
		Type: "sqlite",
		Database: database.Config{
			DSN:         ":memory:",
			Tables:      edgeserve.Tables{Names: "display_names"},
			AutoMigrate: true,
		},
	})
	require.NoError(t, err)
	defer func() { _ = closeFn() }()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "a.zip", "song.zip"))

	name, err := store.Get(ctx, "a.zip")
	require.NoError(t, err)
	assert.Equal(t, "song.zip", name)
}

func TestNewNameStore_Unsupported(t *testing.T) {
	_, _, err := keybackend.NewNameStore(context.Background(), keybackend.Config{Type: "etcd"})
	assert.ErrorIs(t, err, keybackend.ErrUnsupportedType)
}
