package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/openjob/internal/domain"
)

func newTestCache(t *testing.T) (*RedisSearchCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSearchCacheFromClient(client, "search"), mr
}

func mustKey(t *testing.T, c *RedisSearchCache, index, body string) string {
	t.Helper()
	key, err := c.BuildKey(context.Background(), index, []byte(body))
	require.NoError(t, err)
	return key
}

func TestRedisSearchCache_BuildKey(t *testing.T) {
	c, _ := newTestCache(t)

	a := mustKey(t, c, "openjob", `{"size":20}`)
	b := mustKey(t, c, "openjob", `{"size":20}`)
	other := mustKey(t, c, "openjob", `{"size":21}`)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, other)
	assert.Regexp(t, `^search:openjob:g0:[0-9a-f]{64}$`, a)
}

func TestRedisSearchCache_BuildKeyRedisDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, err := c.BuildKey(context.Background(), "openjob", []byte("q"))
	assert.Error(t, err)
}

func TestRedisSearchCache_GetSet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	key := mustKey(t, c, "openjob", "q")

	_, err := c.Get(ctx, key)
	assert.True(t, errors.Is(err, ErrCacheMiss))

	resp := &domain.SearchResponse{Count: 2, Data: []json.RawMessage{json.RawMessage(`{"jobId":"1"}`)}}
	require.NoError(t, c.Set(ctx, key, resp, time.Minute))

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Count)
	require.Len(t, got.Data, 1)
	assert.JSONEq(t, `{"jobId":"1"}`, string(got.Data[0]))

	mr.FastForward(2 * time.Minute)
	_, err = c.Get(ctx, key)
	assert.True(t, errors.Is(err, ErrCacheMiss))
}

func TestRedisSearchCache_GetCorrupt(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("search:openjob:x", "not json"))

	_, err := c.Get(context.Background(), "search:openjob:x")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCacheMiss))
}

func TestRedisSearchCache_Flush(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < 1200; i++ {
		key := mustKey(t, c, "openjob", fmt.Sprint(i))
		require.NoError(t, c.Set(ctx, key, &domain.SearchResponse{}, time.Minute))
	}
	require.NoError(t, mr.Set("search:other:keep", "{}"))

	n, err := c.Flush(ctx, "openjob")
	require.NoError(t, err)
	assert.Equal(t, int64(1200), n)
	assert.True(t, mr.Exists("search:other:keep"))
	assert.ElementsMatch(t, []string{"search:other:keep", "search-generation:openjob"}, mr.Keys())
}

func TestRedisSearchCache_FlushOrphansInFlightWrites(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	// A search computed its key, then the index was flushed before it
	// stored the result.
	before := mustKey(t, c, "openjob", "q")
	_, err := c.Flush(ctx, "openjob")
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, before, &domain.SearchResponse{Count: 1}, time.Minute))

	after := mustKey(t, c, "openjob", "q")
	assert.NotEqual(t, before, after)
	assert.Regexp(t, `^search:openjob:g1:`, after)
	_, err = c.Get(ctx, after)
	assert.ErrorIs(t, err, ErrCacheMiss)

	// Other indexes keep their generation.
	assert.Regexp(t, `^search:other:g0:`, mustKey(t, c, "other", "q"))
}

func TestRedisSearchCache_CloseBorrowedClient(t *testing.T) {
	c, _ := newTestCache(t)
	require.NoError(t, c.Close())
	assert.NoError(t, c.Client().Ping(context.Background()).Err())
}
