package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetWithETag(t *testing.T) {
	c := New(true)
	defer c.Close()

	etag := c.Set("k", []byte("hello"), time.Minute)
	data, got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, etag, got)
	assert.Equal(t, ComputeETag([]byte("hello")), etag)
}

func TestExpiry(t *testing.T) {
	c := New(true)
	defer c.Close()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", []byte("v"), time.Minute)
	now = now.Add(2 * time.Minute)
	_, _, ok := c.Get("k")
	assert.False(t, ok)

	c.evict()
	assert.Equal(t, 0, c.Stats().TotalKeys)
}

func TestDisabledCacheNeverHits(t *testing.T) {
	c := New(false)
	c.Set("k", []byte("v"), time.Minute)
	_, _, ok := c.Get("k")
	assert.False(t, ok)
}

func TestPageStoreContract(t *testing.T) {
	c := New(true)
	defer c.Close()
	var store PageStore = c

	ctx := context.Background()
	_, ok, err := store.Load(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Store(ctx, "page", []byte("<html>"), time.Minute))
	data, ok, err := store.Load(ctx, "page")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "<html>", string(data))
}

func TestCheckETagMatch(t *testing.T) {
	assert.False(t, CheckETagMatch("", `W/"a"`))
	assert.True(t, CheckETagMatch("*", `W/"a"`))
	assert.True(t, CheckETagMatch(`W/"a"`, `W/"a"`))
	assert.False(t, CheckETagMatch(`W/"b"`, `W/"a"`))
	assert.True(t, CheckETagMatch(`"a"`, `W/"a"`))
	assert.True(t, CheckETagMatch(`W/"b", W/"a"`, `W/"a"`))
}

func TestStatsCountsHitsAndMisses(t *testing.T) {
	c := New(true)
	defer c.Close()

	c.Set("k", []byte("v"), time.Minute)
	c.Get("k")
	c.Get("k")
	c.Get("absent")

	st := c.Stats()
	assert.Equal(t, int64(2), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
	assert.Equal(t, 1, st.ActiveKeys)
	assert.Equal(t, 0, st.ExpiredKeys)
}
