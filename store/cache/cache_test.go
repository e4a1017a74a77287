package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute, CleanupInterval: time.Minute})
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "a", 1)

	got, ok := c.Get(ctx, "a")
	require.True(t, ok)
	require.Equal(t, 1, got)

	_, ok = c.Get(ctx, "missing")
	require.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute, CleanupInterval: time.Minute})
	defer c.Close()

	ctx := context.Background()
	c.SetWithTTL(ctx, "a", "v", -time.Second)

	_, ok := c.Get(ctx, "a")
	require.False(t, ok)
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute, CleanupInterval: time.Minute})
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)

	c.Delete(ctx, "a")
	_, ok := c.Get(ctx, "a")
	require.False(t, ok)

	c.Clear(ctx)
	require.Equal(t, 0, c.Size())
}

func TestCacheMaxItems(t *testing.T) {
	evicted := make(map[string]any)
	c := New(Config{
		DefaultTTL:      time.Minute,
		CleanupInterval: time.Minute,
		MaxItems:        2,
		OnEviction:      func(key string, value any) { evicted[key] = value },
	})
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)
	c.Set(ctx, "c", 3)

	require.Equal(t, 2, c.Size())
	require.Len(t, evicted, 1)
}
