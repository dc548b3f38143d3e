package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayeredCache(t *testing.T) {
	ctx := context.Background()
	l2 := NewMemoryCache()
	t.Cleanup(func() { _ = l2.Close() })
	lc := NewLayeredCache(l2, WithL1(10, time.Minute))
	t.Cleanup(func() { _ = lc.Close() })

	require.NoError(t, lc.Set(ctx, "k", "v", time.Hour))

	var got string
	require.NoError(t, l2.Get(ctx, "k", &got))
	assert.Equal(t, "v", got)

	// L1 answers even after L2 lost the entry.
	require.NoError(t, l2.Delete(ctx, "k"))
	got = ""
	require.NoError(t, lc.Get(ctx, "k", &got))
	assert.Equal(t, "v", got)

	require.NoError(t, lc.Delete(ctx, "k"))
	assert.ErrorIs(t, lc.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestLayeredCache_FillsL1FromL2(t *testing.T) {
	ctx := context.Background()
	l2 := NewMemoryCache()
	t.Cleanup(func() { _ = l2.Close() })
	lc := NewLayeredCache(l2)
	t.Cleanup(func() { _ = lc.Close() })

	require.NoError(t, l2.Set(ctx, "k", 7, time.Hour))
	var n int
	require.NoError(t, lc.Get(ctx, "k", &n))
	assert.Equal(t, 7, n)

	ok, err := lc.l1.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLayeredCache_L1NeverOutlivesL2(t *testing.T) {
	lc := NewLayeredCache(Noop{}, WithL1(10, time.Minute))
	t.Cleanup(func() { _ = lc.Close() })

	assert.Equal(t, 5*time.Second, lc.l1Expiry(5*time.Second))
	assert.Equal(t, time.Minute, lc.l1Expiry(time.Hour))
	assert.Equal(t, time.Minute, lc.l1Expiry(0))
}

func TestRedisCache_Keys(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	c := NewRedisCacheFromClient(client, "truesignal")
	assert.Equal(t, "truesignal:analysis:abc", c.key("analysis:abc"))
	assert.Equal(t, []string{"truesignal:a", "truesignal:b"}, c.keys([]string{"a", "b"}))
	assert.Equal(t, "a", NewRedisCacheFromClient(client, "").key("a"))
}
