package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()

	file, err := NewFileStorage(filepath.Join(t.TempDir(), "nested", "storage.json"))
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() }) //nolint:errcheck // test cleanup

	return map[string]Storage{
		"file":   file,
		"memory": NewMemoryStorage(),
		"redis":  NewRedisStorage(client),
	}
}

func TestStorage_SetGetRemove(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.GetItem(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.SetItem(ctx, "k", "v1"))
			require.NoError(t, store.SetItem(ctx, "k", "v2"))

			value, ok, err := store.GetItem(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "v2", value)

			require.NoError(t, store.RemoveItem(ctx, "k"))
			require.NoError(t, store.RemoveItem(ctx, "k"), "removing twice is not an error")

			_, ok, err = store.GetItem(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestFileStorage_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.json")

	first, err := NewFileStorage(path)
	require.NoError(t, err)
	require.NoError(t, first.SetItem(ctx, "auth_cache", `{"a":1}`))

	second, err := NewFileStorage(path)
	require.NoError(t, err)

	value, ok, err := second.GetItem(ctx, "auth_cache")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, value)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStorage_CorruptFileReadsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store, err := NewFileStorage(path)
	require.NoError(t, err)

	_, ok, err := store.GetItem(ctx, "auth_cache")
	require.NoError(t, err)
	assert.False(t, ok)

	// writing repairs the file
	require.NoError(t, store.SetItem(ctx, "k", "v"))
	value, ok, err := store.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)
}

func TestRedisStorage_PrefixesKeys(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close() //nolint:errcheck // test cleanup

	store := NewRedisStorage(client)
	require.NoError(t, store.SetItem(ctx, "auth_token", "abc"))

	got, err := mr.Get("biolink:storage:auth_token")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, s)

	s, err = Open(ctx, Options{Backend: BackendFile, Path: filepath.Join(t.TempDir(), "s.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileStorage{}, s)

	mr := miniredis.RunT(t)
	s, err = Open(ctx, Options{Backend: BackendRedis, RedisURL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &RedisStorage{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Options{Backend: BackendRedis})
	assert.Error(t, err)

	_, err = Open(ctx, Options{Backend: "indexeddb"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
