package services

import (
	"context"
	"testing"
	"time"

	"github.com/address-resolver/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheService_GetSet(t *testing.T) {
	ctx := context.Background()
	cache := NewCacheService(time.Hour)

	_, ok, err := cache.Get(ctx, "search:x")
	require.NoError(t, err)
	assert.False(t, ok)

	result := models.NewAddressResult(models.OperationSearch, "x", nil)
	require.NoError(t, cache.Set(ctx, "search:x", result))

	got, ok, err := cache.Get(ctx, "search:x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, result, got)

	exists, _ := cache.Exists(ctx, "search:x")
	assert.True(t, exists)

	ttl, _ := cache.GetTTL(ctx, "search:x")
	assert.Greater(t, ttl, 59*time.Minute)

	stats, err := cache.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalHits)
	assert.Equal(t, int64(1), stats.TotalMiss)
	assert.Equal(t, int64(1), stats.TotalItems)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)

	require.NoError(t, cache.Clear(ctx))
	assert.Zero(t, cache.Size())
}

func TestCacheService_Expiry(t *testing.T) {
	ctx := context.Background()
	cache := NewCacheService(time.Millisecond)
	require.NoError(t, cache.Set(ctx, "a", models.NewAddressResult(models.OperationSearch, "a", nil)))
	require.NoError(t, cache.Set(ctx, "b", models.NewAddressResult(models.OperationSearch, "b", nil)))
	time.Sleep(5 * time.Millisecond)

	_, ok, err := cache.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, cache.CleanupExpired())
	assert.Zero(t, cache.Size())
}
