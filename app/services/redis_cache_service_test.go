package services

import (
	"context"
	"testing"
	"time"

	"github.com/address-resolver/app/models"
	"github.com/address-resolver/internal/fias"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) (*RedisCacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache, err := NewRedisCacheService("redis://"+mr.Addr(), time.Hour, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestRedisCacheService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestRedisCache(t)

	_, ok, err := cache.Get(ctx, "search:x")
	require.NoError(t, err)
	assert.False(t, ok)

	street := &fias.AddressPart{ID: "s", Level: fias.Street, Name: "Смоленская ул",
		Parent: &fias.AddressPart{ID: "r", Level: fias.Region, Name: "Москва г"}}
	result := models.NewAddressResult(models.OperationSearch, "Смол", []*fias.AddressPart{street})
	require.NoError(t, cache.Set(ctx, "search:x", result))
	assert.True(t, mr.Exists(defaultRedisPrefix+"search:x"))

	got, ok, err := cache.Get(ctx, "search:x")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Parts, 1)
	assert.True(t, street.Equal(got.Parts[0]))

	ttl, err := cache.GetTTL(ctx, "search:x")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, ttl)

	stats, err := cache.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "redis", stats.Backend)
	assert.Equal(t, int64(1), stats.TotalItems)
	assert.Equal(t, int64(1), stats.TotalHits)
	assert.Equal(t, int64(1), stats.TotalMiss)
}

func TestRedisCacheService_ClearKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestRedisCache(t)
	require.NoError(t, mr.Set("other:key", "v"))

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, cache.Set(ctx, key, models.NewAddressResult(models.OperationSearch, key, nil)))
	}
	require.NoError(t, cache.Clear(ctx))

	exists, err := cache.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.True(t, mr.Exists("other:key"))
}

func TestRedisCacheService_Expiry(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestRedisCache(t)
	require.NoError(t, cache.Set(ctx, "a", models.NewAddressResult(models.OperationSearch, "a", nil)))

	mr.FastForward(2 * time.Hour)
	_, ok, err := cache.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisCacheService_BadURL(t *testing.T) {
	_, err := NewRedisCacheService("not a url", time.Hour, nil)
	assert.Error(t, err)
}
