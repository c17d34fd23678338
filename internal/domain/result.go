package domain

import "time"

// Immutable summary of one simulation run.
// ServiceMean holds the effective (strategy-scaled) service mean.
// ID, Seed and CreatedAt are populated by the experiment service, not the simulation.
type ExperimentResult struct {
	ID             string
	BatchID        string
	ArrivalMean    float64
	ServiceMean    float64
	Capacity       int
	Strategy       Strategy
	Seed           uint64
	AvgWait        float64
	Throughput     float64
	VehiclesServed int
	CreatedAt      time.Time
}
