package dto

import (
	"fmt"
	"time"
	"traffic-signal-sim/internal/domain"
)

type ExperimentRequest struct {
	ArrivalMean float64 `json:"arrival_mean"`
	ServiceMean float64 `json:"service_mean"`
	Capacity    int     `json:"capacity"`
	Strategy    string  `json:"strategy"`
	Seed        uint64  `json:"seed"`
}

type RunExperimentsRequest struct {
	Experiments []ExperimentRequest `json:"experiments"`
}

type ExperimentResponse struct {
	ID             string    `json:"id"`
	BatchID        string    `json:"batch_id"`
	ArrivalMean    float64   `json:"arrival_mean"`
	ServiceMean    float64   `json:"service_mean"`
	Capacity       int       `json:"capacity"`
	Strategy       string    `json:"strategy"`
	Seed           uint64    `json:"seed"`
	AvgWait        float64   `json:"avg_wait"`
	Throughput     float64   `json:"throughput"`
	VehiclesServed int       `json:"vehicles_served"`
	CreatedAt      time.Time `json:"created_at"`
}

type RunExperimentsResponse struct {
	BatchID string               `json:"batch_id"`
	Results []ExperimentResponse `json:"results"`
}

type ListExperimentsResponse struct {
	Experiments []ExperimentResponse `json:"experiments"`
}

// StreamMessage is one websocket frame of GET /experiments/stream.
// Exactly one of Result, Error or Done is set.
type StreamMessage struct {
	Index   int                 `json:"index"`
	Result  *ExperimentResponse `json:"result,omitempty"`
	Error   string              `json:"error,omitempty"`
	Done    bool                `json:"done,omitempty"`
	BatchID string              `json:"batch_id,omitempty"`
}

// Configs converts the request into simulation configs without validating them.
func (r RunExperimentsRequest) Configs() ([]domain.SimulationConfig, error) {
	out := make([]domain.SimulationConfig, 0, len(r.Experiments))
	for i, e := range r.Experiments {
		st, err := domain.ParseStrategy(e.Strategy)
		if err != nil {
			return nil, fmt.Errorf("experiment %d: %w", i+1, err)
		}
		out = append(out, domain.SimulationConfig{
			ArrivalMean: e.ArrivalMean,
			ServiceMean: e.ServiceMean,
			Capacity:    e.Capacity,
			Strategy:    st,
			Seed:        e.Seed,
		})
	}
	return out, nil
}

func FromResult(r domain.ExperimentResult) ExperimentResponse {
	return ExperimentResponse{
		ID:             r.ID,
		BatchID:        r.BatchID,
		ArrivalMean:    r.ArrivalMean,
		ServiceMean:    r.ServiceMean,
		Capacity:       r.Capacity,
		Strategy:       string(r.Strategy),
		Seed:           r.Seed,
		AvgWait:        r.AvgWait,
		Throughput:     r.Throughput,
		VehiclesServed: r.VehiclesServed,
		CreatedAt:      r.CreatedAt,
	}
}

// ToResult is the inverse of FromResult, used by API clients.
func (e ExperimentResponse) ToResult() domain.ExperimentResult {
	return domain.ExperimentResult{
		ID:             e.ID,
		BatchID:        e.BatchID,
		ArrivalMean:    e.ArrivalMean,
		ServiceMean:    e.ServiceMean,
		Capacity:       e.Capacity,
		Strategy:       domain.Strategy(e.Strategy),
		Seed:           e.Seed,
		AvgWait:        e.AvgWait,
		Throughput:     e.Throughput,
		VehiclesServed: e.VehiclesServed,
		CreatedAt:      e.CreatedAt,
	}
}

func FromResults(rs []domain.ExperimentResult) []ExperimentResponse {
	out := make([]ExperimentResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, FromResult(r))
	}
	return out
}
