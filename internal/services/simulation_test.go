package services

import (
	"context"
	"errors"
	"testing"
	"traffic-signal-sim/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() domain.SimulationConfig {
	return domain.SimulationConfig{
		ArrivalMean: 10,
		ServiceMean: 5,
		Capacity:    1,
		Strategy:    domain.StrategyFixed,
		Seed:        42,
	}
}

func TestSimulateBaselineScenario(t *testing.T) {
	res, err := Simulate(context.Background(), baseConfig())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.VehiclesServed, 250)
	assert.LessOrEqual(t, res.VehiclesServed, 450)
	assert.GreaterOrEqual(t, res.AvgWait, 0.0)
	assert.Equal(t, float64(res.VehiclesServed)/domain.Horizon, res.Throughput)
	assert.Equal(t, 5.0, res.ServiceMean)
	assert.Equal(t, uint64(42), res.Seed)
}

func TestRunServedMatchesRecordedWaits(t *testing.T) {
	for capacity := 1; capacity <= 3; capacity++ {
		cfg := baseConfig()
		cfg.Capacity = capacity
		cfg.ArrivalMean = 3 // congested enough that lanes stay busy

		run, err := NewRun(cfg)
		require.NoError(t, err)
		assert.Equal(t, RunConfiguring, run.State())

		res, err := run.Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, RunCompleted, run.State())

		stats := run.Stats()
		waits := run.WaitTimes()
		assert.Equal(t, res.VehiclesServed, len(waits))
		assert.Equal(t, stats.Served, res.VehiclesServed)
		assert.Equal(t, stats.Arrivals, stats.Served+stats.InFlight)
		assert.LessOrEqual(t, stats.PeakLanes, capacity)
		assert.Equal(t, float64(res.VehiclesServed)/3600, res.Throughput)

		for _, w := range waits {
			assert.GreaterOrEqual(t, w, 0.0)
		}
	}
}

func TestRunCannotExecuteTwice(t *testing.T) {
	run, err := NewRun(baseConfig())
	require.NoError(t, err)

	_, err = run.Execute(context.Background())
	require.NoError(t, err)

	_, err = run.Execute(context.Background())
	assert.Error(t, err)
}

func TestSimulateIsDeterministicForSeed(t *testing.T) {
	a, err := Simulate(context.Background(), baseConfig())
	require.NoError(t, err)
	b, err := Simulate(context.Background(), baseConfig())
	require.NoError(t, err)

	assert.Equal(t, a, b)

	other := baseConfig()
	other.Seed = 43
	c, err := Simulate(context.Background(), other)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestAdaptiveScalesServiceMean(t *testing.T) {
	cfg := baseConfig()
	cfg.Strategy = domain.StrategyAdaptive

	run, err := NewRun(cfg)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, run.serviceMean, 1e-12)

	res, err := run.Execute(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 4.0, res.ServiceMean, 1e-12)
	assert.Equal(t, domain.StrategyAdaptive, res.Strategy)

	fixed, err := NewRun(baseConfig())
	require.NoError(t, err)
	assert.Equal(t, 5.0, fixed.serviceMean)
}

func TestMoreLanesNeverWaitLonger(t *testing.T) {
	one := baseConfig()
	one.ArrivalMean = 6
	three := one
	three.Capacity = 3

	r1, err := Simulate(context.Background(), one)
	require.NoError(t, err)
	r3, err := Simulate(context.Background(), three)
	require.NoError(t, err)

	assert.LessOrEqual(t, r3.AvgWait, r1.AvgWait)
}

func TestZeroCompletionsYieldZeroSummary(t *testing.T) {
	tests := []struct {
		name string
		cfg  domain.SimulationConfig
	}{
		{
			name: "no arrivals",
			cfg:  domain.SimulationConfig{ArrivalMean: 1e12, ServiceMean: 5, Capacity: 1, Strategy: domain.StrategyFixed, Seed: 1},
		},
		{
			name: "service never finishes",
			cfg:  domain.SimulationConfig{ArrivalMean: 10, ServiceMean: 1e12, Capacity: 1, Strategy: domain.StrategyFixed, Seed: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Simulate(context.Background(), tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, 0, res.VehiclesServed)
			assert.Equal(t, 0.0, res.AvgWait)
			assert.Equal(t, 0.0, res.Throughput)
		})
	}
}

func TestSimulateRejectsInvalidConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.Capacity = 5

	_, err := Simulate(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
}

func TestSimulateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Simulate(ctx, baseConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunStopsAtEventBudget(t *testing.T) {
	cfg := baseConfig()
	cfg.ArrivalMean = 1e-4
	cfg.ServiceMean = 1e9

	run, err := NewRun(cfg)
	require.NoError(t, err)
	run.SetEventBudget(10_000)

	_, err = run.Execute(context.Background())
	require.ErrorIs(t, err, ErrEventBudget)
	assert.NotEqual(t, RunCompleted, run.State())
	assert.LessOrEqual(t, run.Stats().Arrivals, 10_000)
}

func TestDefaultEventBudgetCoversDenseTraffic(t *testing.T) {
	cfg := baseConfig()
	cfg.ArrivalMean = 0.04
	cfg.ServiceMean = 1e-3
	cfg.Capacity = 3
	require.NoError(t, cfg.CheckLimits())

	run, err := NewRun(cfg)
	require.NoError(t, err)
	_, err = run.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RunCompleted, run.State())
}
