package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"traffic-signal-sim/internal/domain"
	"traffic-signal-sim/internal/platform/obs"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "trafficsim:result:"

// RedisResultCache stores seeded simulation results in Redis as JSON.
// Entries carry only the simulated fields; per-experiment IDs are not cached.
type RedisResultCache struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

func NewRedisResultCache(client *redis.Client, ttl time.Duration) *RedisResultCache {
	return &RedisResultCache{Client: client, Prefix: defaultKeyPrefix, TTL: ttl}
}

type cachedResult struct {
	ArrivalMean    float64 `json:"arrival_mean"`
	ServiceMean    float64 `json:"service_mean"`
	Capacity       int     `json:"capacity"`
	Strategy       string  `json:"strategy"`
	Seed           uint64  `json:"seed"`
	AvgWait        float64 `json:"avg_wait"`
	Throughput     float64 `json:"throughput"`
	VehiclesServed int     `json:"vehicles_served"`
}

// Fetch a cached result. A miss returns ok=false and no error.
func (c *RedisResultCache) Get(ctx context.Context, key string) (_ domain.ExperimentResult, _ bool, err error) {
	defer obs.Time(ctx, "result.cache.Get")(&err)

	if c.Client == nil {
		return domain.ExperimentResult{}, false, errors.New("result cache: client is nil")
	}
	if key == "" {
		return domain.ExperimentResult{}, false, errors.New("get result cache: key must not be empty")
	}

	raw, err := c.Client.Get(ctx, c.Prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ExperimentResult{}, false, nil
	}
	if err != nil {
		return domain.ExperimentResult{}, false, fmt.Errorf("get result cache: key=%s: %w", key, err)
	}

	var cr cachedResult
	if err := json.Unmarshal(raw, &cr); err != nil {
		return domain.ExperimentResult{}, false, fmt.Errorf("get result cache: decode key=%s: %w", key, err)
	}

	return domain.ExperimentResult{
		ArrivalMean:    cr.ArrivalMean,
		ServiceMean:    cr.ServiceMean,
		Capacity:       cr.Capacity,
		Strategy:       domain.Strategy(cr.Strategy),
		Seed:           cr.Seed,
		AvgWait:        cr.AvgWait,
		Throughput:     cr.Throughput,
		VehiclesServed: cr.VehiclesServed,
	}, true, nil
}

// Store a result under key. A zero TTL keeps it until evicted.
func (c *RedisResultCache) Put(ctx context.Context, key string, r domain.ExperimentResult) error {
	if c.Client == nil {
		return errors.New("result cache: client is nil")
	}
	if key == "" {
		return errors.New("put result cache: key must not be empty")
	}

	raw, err := json.Marshal(cachedResult{
		ArrivalMean:    r.ArrivalMean,
		ServiceMean:    r.ServiceMean,
		Capacity:       r.Capacity,
		Strategy:       string(r.Strategy),
		Seed:           r.Seed,
		AvgWait:        r.AvgWait,
		Throughput:     r.Throughput,
		VehiclesServed: r.VehiclesServed,
	})
	if err != nil {
		return fmt.Errorf("put result cache: encode key=%s: %w", key, err)
	}

	if err := c.Client.Set(ctx, c.Prefix+key, raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("put result cache: key=%s: %w", key, err)
	}

	return nil
}
