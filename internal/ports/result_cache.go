package ports

import (
	"context"
	"traffic-signal-sim/internal/domain"
)

// Cache of seeded simulation results keyed by domain.SimulationConfig.Key.
// A seeded run is deterministic, so a hit can stand in for re-running it.
type ResultCache interface {
	Get(ctx context.Context, key string) (domain.ExperimentResult, bool, error)
	Put(ctx context.Context, key string, result domain.ExperimentResult) error
}
