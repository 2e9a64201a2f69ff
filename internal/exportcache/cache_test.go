package exportcache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)

	key := "0f1e2d3c4b5a69788796a5b4c3d2e1f00f1e2d3c4b5a69788796a5b4c3d2e1f0"
	require.NoError(t, c.Put(ctx, key, "renpy", []byte("label main:\n    return\n")))

	got, err := c.Get(ctx, key, "renpy")
	require.NoError(t, err)
	assert.Equal(t, []byte("label main:\n    return\n"), got)

	ok, err := c.Contains(ctx, key, "renpy")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetMiss(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)

	_, err := c.Get(ctx, "absent", "renpy")
	assert.ErrorIs(t, err, ErrMiss)

	ok, err := c.Contains(ctx, "absent", "renpy")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)

	require.NoError(t, c.Put(ctx, "k", "renpy", []byte("first")))
	require.NoError(t, c.Put(ctx, "k", "renpy", []byte("first")))

	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTargetsAreIndependent(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)

	require.NoError(t, c.Put(ctx, "k", "renpy", []byte("script")))
	require.NoError(t, c.Put(ctx, "k", "manifest", []byte("json")))

	got, err := c.Get(ctx, "k", "manifest")
	require.NoError(t, err)
	assert.Equal(t, []byte("json"), got)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k", "renpy")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = c.Get(ctx, "k", "manifest")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestReopenKeepsArtifacts(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, c.Put(ctx, "k", "renpy", []byte("persisted")))
	require.NoError(t, c.Close())

	c, err = Open(path)
	require.NoError(t, err)
	defer c.Close()

	got, err := c.Get(ctx, "k", "renpy")
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), got)
}

func TestDeleteAbsentKey(t *testing.T) {
	c := openTemp(t)
	assert.NoError(t, c.Delete(context.Background(), "never-seen"))
}
