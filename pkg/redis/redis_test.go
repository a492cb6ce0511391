package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/lsequity/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")
	cfg := RateLimitFor("optimizer", 2)

	// When Redis is disabled, all requests should be allowed
	allowed, remaining, err := limiter.Allow(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, cfg.Limit, remaining)

	assert.NoError(t, limiter.Wait(context.Background(), cfg))
}

func TestRateLimitFor(t *testing.T) {
	assert.Equal(t, 5, RateLimitFor("router", 5).Limit)
	assert.Equal(t, 1, RateLimitFor("router", 0).Limit, "non-positive rate falls back to 1/s")
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")

	var result string
	found, err := cache.Get(context.Background(), "key", &result)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Set(context.Background(), "key", "v", TTLShort))
	assert.NoError(t, cache.Delete(context.Background(), "key"))
}

type cachedSelection struct {
	Longs  []string `json:"longs"`
	Shorts []string `json:"shorts"`
}

func TestCache_SetGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewCache(Wrap(db), "lsequity")
	ctx := context.Background()

	value := cachedSelection{Longs: []string{"A", "B"}, Shorts: []string{"C", "D"}}
	data, err := json.Marshal(value)
	require.NoError(t, err)

	key := "lsequity:cache:" + SelectionKey("long_short_value")
	mock.ExpectSet(key, data, TTLWeekly).SetVal("OK")
	mock.ExpectGet(key).SetVal(string(data))

	require.NoError(t, cache.Set(ctx, SelectionKey("long_short_value"), value, TTLWeekly))

	var got cachedSelection
	found, err := cache.Get(ctx, SelectionKey("long_short_value"), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, value, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewCache(Wrap(db), "lsequity")

	mock.ExpectGet("lsequity:cache:missing").RedisNil()

	var got cachedSelection
	found, err := cache.Get(context.Background(), "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_GetError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewCache(Wrap(db), "lsequity")

	mock.ExpectGet("lsequity:cache:broken").SetErr(errors.New("connection reset"))

	var got cachedSelection
	found, err := cache.Get(context.Background(), "broken", &got)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "selection:latest:long_short_size", SelectionKey("long_short_size"))
	assert.Equal(t, "positions:count:long_short_size", PositionCountKey("long_short_size"))
}
