package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutAndGet_RoundTrips(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "pypi", "requests", "2.31.0", 1024))

	entry, err := c.Get(ctx, "pypi", "requests", "2.31.0")
	require.NoError(t, err)
	require.Equal(t, "pypi", entry.Ecosystem)
	require.Equal(t, "requests", entry.Name)
	require.Equal(t, int64(1024), entry.SizeBytes)
	require.Equal(t, 2, entry.AccessCount)
}

func TestGet_NotFound(t *testing.T) {
	c := newTestCache(t)
	_, err := c.Get(context.Background(), "pypi", "missing", "1.0.0")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPut_UpsertsOnConflict(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "npm", "left-pad", "1.0.0", 100))
	require.NoError(t, c.Put(ctx, "npm", "left-pad", "1.0.0", 200))

	entry, err := c.Get(ctx, "npm", "left-pad", "1.0.0")
	require.NoError(t, err)
	require.Equal(t, int64(200), entry.SizeBytes)
	require.Equal(t, 3, entry.AccessCount)
}

func TestEvict_RemovesEntry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "pypi", "numpy", "1.26.0", 2048))
	require.NoError(t, c.Evict(ctx, "pypi", "numpy", "1.26.0"))

	_, err := c.Get(ctx, "pypi", "numpy", "1.26.0")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListEvictable_AgeThreshold(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "pypi", "old-pkg", "1.0.0", 10))

	entries, err := c.ListEvictable(ctx, EvictionPolicy{MaxAgeDays: 0, MaxSizeMB: 1 << 30})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "old-pkg", entries[0].Name)
}

func TestListEvictable_SizeThresholdFallsBackToLRU(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "pypi", "pkg-a", "1.0.0", 5*1024*1024))
	require.NoError(t, c.Put(ctx, "pypi", "pkg-b", "1.0.0", 5*1024*1024))

	entries, err := c.ListEvictable(ctx, EvictionPolicy{MaxAgeDays: 365, MaxSizeMB: 1})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "pkg-a", entries[0].Name)
}
