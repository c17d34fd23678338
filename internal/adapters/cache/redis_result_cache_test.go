package cache

import (
	"context"
	"testing"
	"time"
	"traffic-signal-sim/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisResultCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisResultCache(client, ttl), mr
}

func TestRedisResultCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Hour)

	cfg := domain.SimulationConfig{ArrivalMean: 10, ServiceMean: 5, Capacity: 2, Strategy: domain.StrategyAdaptive, Seed: 11}
	want := domain.ExperimentResult{
		ArrivalMean: 10, ServiceMean: 4, Capacity: 2, Strategy: domain.StrategyAdaptive,
		Seed: 11, AvgWait: 1.5, Throughput: 0.1, VehiclesServed: 360,
	}

	_, ok, err := c.Get(ctx, cfg.Key())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, cfg.Key(), want))
	assert.True(t, mr.Exists(defaultKeyPrefix+cfg.Key()))
	assert.Equal(t, time.Hour, mr.TTL(defaultKeyPrefix+cfg.Key()))

	got, ok, err := c.Get(ctx, cfg.Key())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestRedisResultCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	require.NoError(t, c.Put(ctx, "k", domain.ExperimentResult{Capacity: 1}))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisResultCacheErrors(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, 0)

	_, _, err := c.Get(ctx, "")
	assert.Error(t, err)
	assert.Error(t, c.Put(ctx, "", domain.ExperimentResult{}))

	require.NoError(t, mr.Set(defaultKeyPrefix+"bad", "not json"))
	_, _, err = c.Get(ctx, "bad")
	assert.Error(t, err)

	mr.Close()
	_, _, err = c.Get(ctx, "k")
	assert.Error(t, err)
}
