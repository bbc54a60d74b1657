package cache_test

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/salesdash/internal/cache"
	"github.com/MrJamesThe3rd/salesdash/internal/transaction"
)

func unreachable() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRedis_Unreachable(t *testing.T) {
	c := cache.New(unreachable(), time.Minute)
	defer c.Close()

	ctx := context.Background()

	var dst transaction.Statistics

	found, err := c.Get(ctx, "statistics:m03:y0000", &dst)
	assert.Error(t, err)
	assert.False(t, found)

	assert.Error(t, c.Set(ctx, "statistics:m03:y0000", dst))
}

func TestNewRedis_Unreachable(t *testing.T) {
	_, err := cache.NewRedis(context.Background(), "127.0.0.1:1", "", 0, time.Minute)
	assert.Error(t, err)
}

// Integration-style test: runs only if REDIS_ADDR env is set.
func TestRedisIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}

	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}

	ctx := context.Background()

	c, err := cache.NewRedis(ctx, addr, os.Getenv("REDIS_PASSWORD"), db, 5*time.Second)
	require.NoError(t, err)
	defer c.Close()

	key := "test:" + strconv.FormatInt(time.Now().UnixNano(), 10)

	var miss transaction.Statistics

	found, err := c.Get(ctx, key, &miss)
	require.NoError(t, err)
	assert.False(t, found)

	want := transaction.Statistics{
		TotalSaleAmount:   decimal.RequireFromString("1109.94"),
		TotalSoldItems:    2,
		TotalNotSoldItems: 1,
	}
	require.NoError(t, c.Set(ctx, key, want))

	var got transaction.Statistics

	found, err = c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, want.TotalSaleAmount.Equal(got.TotalSaleAmount))
	assert.Equal(t, want.TotalSoldItems, got.TotalSoldItems)

	var buckets []transaction.Bucket

	require.NoError(t, c.Set(ctx, key, transaction.Coarse.Buckets(map[int]int64{1: 4})))
	found, err = c.Get(ctx, key, &buckets)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, transaction.Coarse.Buckets(map[int]int64{1: 4}), buckets)
}
