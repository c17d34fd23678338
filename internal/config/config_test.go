package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"traffic-signal-sim/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DB_PATH", "DATABASE_URL", "REDIS_ADDR", "OUTPUT_DIR", "WORKERS", "CACHE_TTL", "RUN_TIMEOUT"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "data/experiments.db", cfg.DSN())
	assert.Equal(t, "visualizations", cfg.OutputDir)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, time.Minute, cfg.RunTimeout)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadPostgresRequiresURL(t *testing.T) {
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("WORKERS", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("RUN_TIMEOUT", "")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/sim")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/sim", cfg.DSN())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("RUN_TIMEOUT", "")
	t.Setenv("WORKERS", "zero")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("WORKERS", "2")
	t.Setenv("DB_DRIVER", "mysql")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("DB_DRIVER", "")
	t.Setenv("RUN_TIMEOUT", "0s")
	_, err = Load()
	assert.Error(t, err)
}

func TestParsePlan(t *testing.T) {
	doc := `
experiments:
  - arrival_mean: 10
    service_mean: 5
    capacity: 1
    strategy: fixed
    seed: 42
  - arrival_mean: 8
    service_mean: 6
    capacity: 3
    strategy: Adaptive
`
	p, err := ParsePlan(strings.NewReader(doc))
	require.NoError(t, err)

	cfgs, err := p.Configs()
	require.NoError(t, err)
	require.Len(t, cfgs, 2)
	assert.Equal(t, domain.StrategyFixed, cfgs[0].Strategy)
	assert.Equal(t, uint64(42), cfgs[0].Seed)
	assert.Equal(t, domain.StrategyAdaptive, cfgs[1].Strategy)
	assert.Equal(t, 3, cfgs[1].Capacity)
}

func TestParsePlanErrors(t *testing.T) {
	tests := map[string]string{
		"empty":          "",
		"no experiments": "experiments: []\n",
		"unknown field":  "experiments:\n  - arrival_mean: 1\n    lanes: 2\n",
		"bad strategy":   "experiments:\n  - strategy: smart\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePlan(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadPlanValidatesExperiments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	doc := "experiments:\n  - arrival_mean: 10\n    service_mean: 5\n    capacity: 4\n    strategy: Fixed\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := LoadPlan(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "experiment 1")

	_, err = LoadPlan(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
