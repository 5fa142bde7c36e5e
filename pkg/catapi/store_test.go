package catapi

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore runs the behaviour every Store must share.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, _, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	before := time.Now().Add(-time.Second)
	require.NoError(t, s.Put(ctx, "a", []byte("one")))
	require.NoError(t, s.Put(ctx, "b", []byte("two")))

	data, storedAt, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
	assert.True(t, storedAt.After(before), "stored at %v", storedAt)

	require.NoError(t, s.Put(ctx, "a", []byte("uno")))
	data, _, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "uno", string(data))

	n, err := s.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, s.Delete(ctx, "b"))
	require.NoError(t, s.Delete(ctx, "b"))
	_, _, err = s.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)

	removed, err := s.Prune(ctx, before)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	removed, err = s.Prune(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	require.NoError(t, s.Put(ctx, "c", []byte("three")))
	require.NoError(t, s.Clear(ctx))
	n, err = s.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(afero.NewMemMapFs(), "/var/cache/discogen")
	require.NoError(t, err)
	testStore(t, s)
}

func TestFileStoreOnDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	s, err := NewFileStore(nil, dir)
	require.NoError(t, err)
	testStore(t, s)
}

func TestFileStoreSkipsTempFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := NewFileStore(fs, "/cache")
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "/cache/half-written-123"+tmpSuffix, []byte("x"), 0o644))
	require.NoError(t, s.Put(context.Background(), "entry", []byte("x")))

	n, err := s.Entries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestFileStorePruneUsesModTime(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := NewFileStore(fs, "/cache")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "old", []byte("x")))
	require.NoError(t, s.Put(ctx, "new", []byte("y")))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, fs.Chtimes(s.Path("old"), old, old))

	removed, err := s.Prune(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, _, err = s.Get(ctx, "new")
	assert.NoError(t, err)
}

func TestNewFileStoreRequiresDir(t *testing.T) {
	_, err := NewFileStore(afero.NewMemMapFs(), "")
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	testStore(t, s)
}

func TestSQLiteStoreStoredAt(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.put(ctx, "x", []byte("data"), at))

	_, storedAt, err := s.Get(ctx, "x")
	require.NoError(t, err)
	assert.True(t, at.Equal(storedAt))
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("DISCOGEN_TEST_REDIS_URL")
	if url == "" {
		t.Skip("DISCOGEN_TEST_REDIS_URL not set")
	}
	s, err := NewRedisStore(context.Background(), RedisConfig{
		URL:    url,
		Prefix: "discogen:test:" + t.Name() + ":",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	testStore(t, s)
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	s, err := NewStore(ctx, StoreConfig{Backend: BackendFile, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = NewStore(ctx, StoreConfig{Backend: BackendSQLite, DBPath: filepath.Join(t.TempDir(), "c.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = NewStore(ctx, StoreConfig{Backend: "memcached"})
	assert.Error(t, err)

	_, err = NewStore(ctx, StoreConfig{Backend: BackendRedis, RedisURL: "not a url"})
	assert.Error(t, err)
}
