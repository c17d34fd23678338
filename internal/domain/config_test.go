package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulationConfigValidate(t *testing.T) {
	valid := SimulationConfig{ArrivalMean: 10, ServiceMean: 5, Capacity: 1, Strategy: StrategyFixed}

	tests := []struct {
		name  string
		edit  func(*SimulationConfig)
		field string
	}{
		{name: "valid", edit: func(*SimulationConfig) {}},
		{name: "zero arrival", edit: func(c *SimulationConfig) { c.ArrivalMean = 0 }, field: "arrival_mean"},
		{name: "negative arrival", edit: func(c *SimulationConfig) { c.ArrivalMean = -1 }, field: "arrival_mean"},
		{name: "nan arrival", edit: func(c *SimulationConfig) { c.ArrivalMean = math.NaN() }, field: "arrival_mean"},
		{name: "zero service", edit: func(c *SimulationConfig) { c.ServiceMean = 0 }, field: "service_mean"},
		{name: "capacity zero", edit: func(c *SimulationConfig) { c.Capacity = 0 }, field: "capacity"},
		{name: "capacity four", edit: func(c *SimulationConfig) { c.Capacity = 4 }, field: "capacity"},
		{name: "unknown strategy", edit: func(c *SimulationConfig) { c.Strategy = "Random" }, field: "strategy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.edit(&cfg)

			err := cfg.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))

			var ce *ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestEffectiveServiceMean(t *testing.T) {
	fixed := SimulationConfig{ServiceMean: 5, Strategy: StrategyFixed}
	adaptive := SimulationConfig{ServiceMean: 5, Strategy: StrategyAdaptive}

	assert.Equal(t, 5.0, fixed.EffectiveServiceMean())
	assert.InDelta(t, 4.0, adaptive.EffectiveServiceMean(), 1e-12)
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]Strategy{
		"fixed":      StrategyFixed,
		"FIXED":      StrategyFixed,
		" Adaptive ": StrategyAdaptive,
		"adaptive":   StrategyAdaptive,
	} {
		got, err := ParseStrategy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseStrategy("smart")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSimulationConfigKey(t *testing.T) {
	a := SimulationConfig{ArrivalMean: 10, ServiceMean: 5, Capacity: 1, Strategy: StrategyFixed, Seed: 7}
	b := a
	assert.Equal(t, a.Key(), b.Key())

	b.Seed = 8
	assert.NotEqual(t, a.Key(), b.Key())
	assert.Len(t, a.Key(), 16)
}

func TestSimulationConfigCheckLimits(t *testing.T) {
	cfg := SimulationConfig{ArrivalMean: 0.04, ServiceMean: 5, Capacity: 1, Strategy: StrategyFixed}
	require.NoError(t, cfg.CheckLimits())
	assert.InDelta(t, 90_000.0, cfg.ExpectedArrivals(), 1e-6)

	cfg.ArrivalMean = 1e-4
	err := cfg.CheckLimits()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "arrival_mean")
}
