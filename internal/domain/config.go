package domain

import (
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Horizon is the simulated duration of every run, in seconds.
const Horizon = 3600.0

const (
	MinCapacity = 1
	MaxCapacity = 3
)

// MaxExpectedArrivals caps Horizon/ArrivalMean for batch runs. Every arrival
// holds memory until its vehicle departs, so denser traffic is refused.
const MaxExpectedArrivals = 100_000

// Parameters of a single intersection experiment.
// ArrivalMean and ServiceMean are mean seconds between arrivals and mean
// seconds to serve one vehicle; Capacity is the number of lanes served at once.
type SimulationConfig struct {
	ArrivalMean float64
	ServiceMean float64
	Capacity    int
	Strategy    Strategy
	Seed        uint64
}

// Validate rejects configurations that cannot be simulated.
func (c SimulationConfig) Validate() error {
	if !(c.ArrivalMean > 0) || math.IsInf(c.ArrivalMean, 0) {
		return &ConfigError{Field: "arrival_mean", Value: c.ArrivalMean, Reason: "must be a positive number"}
	}
	if !(c.ServiceMean > 0) || math.IsInf(c.ServiceMean, 0) {
		return &ConfigError{Field: "service_mean", Value: c.ServiceMean, Reason: "must be a positive number"}
	}
	if c.Capacity < MinCapacity || c.Capacity > MaxCapacity {
		return &ConfigError{Field: "capacity", Value: c.Capacity, Reason: "must be 1, 2, or 3"}
	}
	if !c.Strategy.Valid() {
		return &ConfigError{Field: "strategy", Value: c.Strategy, Reason: "must be Fixed or Adaptive"}
	}
	return nil
}

// ExpectedArrivals is the mean number of vehicles arriving within Horizon.
func (c SimulationConfig) ExpectedArrivals() float64 {
	return Horizon / c.ArrivalMean
}

// CheckLimits rejects valid configs whose traffic is too dense to simulate
// within MaxExpectedArrivals.
func (c SimulationConfig) CheckLimits() error {
	if c.ExpectedArrivals() > MaxExpectedArrivals {
		return &ConfigError{
			Field:  "arrival_mean",
			Value:  c.ArrivalMean,
			Reason: fmt.Sprintf("must be at least %g (at most %d expected arrivals)", Horizon/MaxExpectedArrivals, MaxExpectedArrivals),
		}
	}
	return nil
}

// EffectiveServiceMean is the service mean after strategy scaling.
// It is the value every service-duration draw uses.
func (c SimulationConfig) EffectiveServiceMean() float64 {
	return c.Strategy.Scale(c.ServiceMean)
}

// Key fingerprints the config, seed included, for result caching.
func (c SimulationConfig) Key() string {
	h := xxhash.Sum64String(fmt.Sprintf("%v|%v|%d|%s|%d",
		c.ArrivalMean, c.ServiceMean, c.Capacity, c.Strategy, c.Seed))
	return fmt.Sprintf("%016x", h)
}
