package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), time.Hour))

	data, hit, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, hit, "null cache should not store data")
	assert.Nil(t, data)

	assert.NoError(t, c.Delete(ctx, "key"))
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	defer c.Close()

	_, hit, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, hit)

	src := []byte("tree")
	require.NoError(t, c.Set(ctx, "k", src, 0))
	src[0] = 'X'

	data, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "tree", string(data), "cache must keep its own copy")

	require.NoError(t, c.Delete(ctx, "k"))
	_, hit, _ = c.Get(ctx, "k")
	assert.False(t, hit)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache().(*MemoryCache)

	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	_, hit, _ := c.Get(ctx, "k")
	assert.True(t, hit)

	now = now.Add(2 * time.Minute)
	_, hit, _ = c.Get(ctx, "k")
	assert.False(t, hit, "entry should expire after its ttl")
	assert.Empty(t, c.entries)
}

func TestMemoryCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := Key(int64(i%4), 1)
			_ = c.Set(ctx, key, []byte("v"), time.Minute)
			_, _, _ = c.Get(ctx, key)
		}(i)
	}
	wg.Wait()
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, Config{})
	require.NoError(t, err)
	assert.IsType(t, &NullCache{}, c)

	c, err = New(ctx, Config{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)

	_, err = New(ctx, Config{Backend: "memcached"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "landing:501:v3", Key(501, 3))
	assert.NotEqual(t, Key(1, 12), Key(11, 2))
}
