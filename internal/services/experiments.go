package services

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"
	"traffic-signal-sim/internal/domain"
	"traffic-signal-sim/internal/platform/obs"
	"traffic-signal-sim/internal/ports"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 4

type RunExperimentsRequest struct {
	Configs []domain.SimulationConfig
	// Maximum concurrent runs; <= 0 means DefaultWorkers.
	Workers int
	// OnResult, if set, observes each result as soon as its run finishes.
	// Calls are serialized but arrive in completion order, not submission order.
	OnResult func(index int, result domain.ExperimentResult)
	// Event cap of every run; 0 means DefaultEventBudget.
	MaxEvents uint64
}

// Batch is the ordered outcome of one RunExperiments call.
type Batch struct {
	ID      string
	Results []domain.ExperimentResult
}

// RunExperiments validates every config, then simulates them in parallel.
//
// Results come back in submission order. Seeded configs consult cache first;
// a zero seed is replaced by a random one that is kept in the result so the
// run can be reproduced. When repo is non-nil the whole batch is stored.
// Both repo and cache may be nil.
func RunExperiments(
	ctx context.Context,
	req RunExperimentsRequest,
	repo ports.ExperimentRepository,
	cache ports.ResultCache,
) (_ *Batch, err error) {
	defer obs.Time(ctx, "experiments.run")(&err)

	for i, cfg := range req.Configs {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("run experiments: experiment %d: %w", i+1, err)
		}
		if err := cfg.CheckLimits(); err != nil {
			return nil, fmt.Errorf("run experiments: experiment %d: %w", i+1, err)
		}
	}

	batch := &Batch{
		ID:      uuid.NewString(),
		Results: make([]domain.ExperimentResult, len(req.Configs)),
	}
	if len(req.Configs) == 0 {
		return batch, nil
	}

	workers := req.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	budget := req.MaxEvents
	if budget == 0 {
		budget = DefaultEventBudget
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	createdAt := time.Now().UTC()

	for i, cfg := range req.Configs {
		g.Go(func() error {
			res, err := runOne(gctx, cfg, cache, budget)
			if err != nil {
				return fmt.Errorf("run experiments: experiment %d: %w", i+1, err)
			}

			res.ID = uuid.NewString()
			res.BatchID = batch.ID
			res.CreatedAt = createdAt
			batch.Results[i] = res

			if req.OnResult != nil {
				mu.Lock()
				req.OnResult(i, res)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if repo != nil {
		if err := repo.SaveBatch(ctx, batch.ID, batch.Results); err != nil {
			return nil, fmt.Errorf("run experiments: save batch %s: %w", batch.ID, err)
		}
	}

	return batch, nil
}

func runOne(ctx context.Context, cfg domain.SimulationConfig, cache ports.ResultCache, budget uint64) (domain.ExperimentResult, error) {
	seeded := cfg.Seed != 0
	if !seeded {
		cfg.Seed = randomSeed()
	}

	key := cfg.Key()
	if seeded && cache != nil {
		res, ok, err := cache.Get(ctx, key)
		if err != nil {
			// A broken cache only costs a recomputation.
			log.Printf("result cache get failed: key=%s err=%v", key, err)
		} else if ok {
			return res, nil
		}
	}

	run, err := NewRun(cfg)
	if err != nil {
		return domain.ExperimentResult{}, err
	}
	run.SetEventBudget(budget)

	res, err := run.Execute(ctx)
	if err != nil {
		return domain.ExperimentResult{}, err
	}

	if seeded && cache != nil {
		if err := cache.Put(ctx, key, res); err != nil {
			log.Printf("result cache put failed: key=%s err=%v", key, err)
		}
	}

	return res, nil
}

func randomSeed() uint64 {
	for {
		if s := rand.Uint64(); s != 0 {
			return s
		}
	}
}
