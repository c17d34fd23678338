package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"traffic-signal-sim/internal/domain"
	"traffic-signal-sim/internal/sim"
)

// RunState tracks a Run through Configuring -> Running -> Completed.
type RunState int

const (
	RunConfiguring RunState = iota
	RunRunning
	RunCompleted
)

func (s RunState) String() string {
	switch s {
	case RunConfiguring:
		return "configuring"
	case RunRunning:
		return "running"
	case RunCompleted:
		return "completed"
	}
	return fmt.Sprintf("RunState(%d)", int(s))
}

// DefaultEventBudget bounds the events of one Run. A run within
// domain.MaxExpectedArrivals needs about three events per vehicle.
const DefaultEventBudget = 1_000_000

// ErrEventBudget is returned when a run executes more events than its budget.
var ErrEventBudget = sim.ErrEventBudget

const (
	arrivalStream = 0x9e3779b97f4a7c15
	serviceStream = 0xbf58476d1ce4e5b9
)

// vehicle is the lifecycle state of one car; only its own callbacks touch it.
type vehicle struct {
	id        int
	arrivedAt float64
	wait      float64
	service   float64
}

// RunStats are diagnostic counters of a finished run.
type RunStats struct {
	Arrivals  int
	Served    int
	InFlight  int
	PeakLanes int
}

// Run is one simulation of the intersection for a fixed horizon.
//
// Every Run owns its clock, lane resource, metrics and random source, so
// separate Runs may execute concurrently.
type Run struct {
	cfg         domain.SimulationConfig
	serviceMean float64
	horizon     float64
	budget      uint64

	state   RunState
	clock   *sim.Clock
	lanes   *sim.Resource
	metrics *Metrics

	// Separate streams keep the arrival sequence of a seed independent of
	// how many service draws the lane count lets happen.
	arrivalRNG *rand.Rand
	serviceRNG *rand.Rand

	arrivals int
	result   domain.ExperimentResult
}

// NewRun validates cfg and returns a Run in the Configuring state.
func NewRun(cfg domain.SimulationConfig) (*Run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new run: %w", err)
	}

	return &Run{
		cfg:         cfg,
		serviceMean: cfg.EffectiveServiceMean(),
		horizon:     domain.Horizon,
		budget:      DefaultEventBudget,
		state:       RunConfiguring,
		arrivalRNG:  rand.New(rand.NewPCG(cfg.Seed, arrivalStream)),
		serviceRNG:  rand.New(rand.NewPCG(cfg.Seed, serviceStream)),
	}, nil
}

func (r *Run) State() RunState { return r.state }

// SetEventBudget overrides DefaultEventBudget; 0 removes the cap.
func (r *Run) SetEventBudget(n uint64) { r.budget = n }

// Execute runs the simulation to the horizon and returns its summary.
// Vehicles still waiting or in service at the horizon are discarded.
func (r *Run) Execute(ctx context.Context) (domain.ExperimentResult, error) {
	if r.state != RunConfiguring {
		return domain.ExperimentResult{}, fmt.Errorf("execute run: run is %s", r.state)
	}

	r.clock = sim.NewClock()
	r.clock.SetBudget(r.budget)
	lanes, err := sim.NewResource(r.clock, "intersection", r.cfg.Capacity)
	if err != nil {
		return domain.ExperimentResult{}, fmt.Errorf("execute run: %w", err)
	}
	r.lanes = lanes
	r.metrics = NewMetrics(r.horizon)
	r.state = RunRunning

	r.scheduleArrival()

	if err := r.clock.RunUntil(ctx, r.horizon); err != nil {
		return domain.ExperimentResult{}, fmt.Errorf("execute run: %w", err)
	}

	summary := r.metrics.Summarize()
	r.result = domain.ExperimentResult{
		ArrivalMean:    r.cfg.ArrivalMean,
		ServiceMean:    r.serviceMean,
		Capacity:       r.cfg.Capacity,
		Strategy:       r.cfg.Strategy,
		Seed:           r.cfg.Seed,
		AvgWait:        summary.AvgWait,
		Throughput:     summary.Throughput,
		VehiclesServed: summary.VehiclesServed,
	}
	r.state = RunCompleted

	return r.result, nil
}

// Stats is only meaningful once the run has completed.
func (r *Run) Stats() RunStats {
	if r.metrics == nil {
		return RunStats{}
	}
	return RunStats{
		Arrivals:  r.arrivals,
		Served:    r.metrics.Served(),
		InFlight:  r.arrivals - r.metrics.Served(),
		PeakLanes: r.lanes.Peak(),
	}
}

// WaitTimes returns the recorded waits of a completed run.
func (r *Run) WaitTimes() []float64 {
	if r.metrics == nil {
		return nil
	}
	return r.metrics.WaitTimes()
}

// scheduleArrival is the arrival generator: it waits an exponential gap,
// spawns a vehicle and re-arms itself. It only ends when the clock stops.
func (r *Run) scheduleArrival() {
	gap := r.arrivalRNG.ExpFloat64() * r.cfg.ArrivalMean
	r.clock.After(gap, "arrival", func() {
		r.spawn()
		r.scheduleArrival()
	})
}

func (r *Run) spawn() {
	r.arrivals++
	v := &vehicle{id: r.arrivals, arrivedAt: r.clock.Now()}
	r.lanes.Acquire(func() { r.serve(v) })
}

func (r *Run) serve(v *vehicle) {
	v.wait = r.clock.Now() - v.arrivedAt
	v.service = r.serviceRNG.ExpFloat64() * r.serviceMean
	r.clock.After(v.service, "depart", func() { r.depart(v) })
}

func (r *Run) depart(v *vehicle) {
	r.lanes.Release()
	r.metrics.Record(v.wait)
}

// Simulate runs one experiment configuration to completion.
func Simulate(ctx context.Context, cfg domain.SimulationConfig) (domain.ExperimentResult, error) {
	run, err := NewRun(cfg)
	if err != nil {
		return domain.ExperimentResult{}, fmt.Errorf("simulate: %w", err)
	}

	res, err := run.Execute(ctx)
	if err != nil {
		return domain.ExperimentResult{}, fmt.Errorf("simulate: %w", err)
	}
	return res, nil
}
