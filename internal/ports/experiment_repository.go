package ports

import (
	"context"
	"errors"
	"traffic-signal-sim/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Port: a boundary for storing and retrieving finished experiment results.
type ExperimentRepository interface {
	// Store all results of one batch, preserving submission order.
	SaveBatch(ctx context.Context, batchID string, results []domain.ExperimentResult) error
	// Retrieve one result by ID, or ErrNotFound.
	GetExperiment(ctx context.Context, id string) (*domain.ExperimentResult, error)
	// Retrieve the most recent results, newest first.
	ListExperiments(ctx context.Context, limit int) ([]domain.ExperimentResult, error)
	// Retrieve the results of one batch in submission order.
	ListBatch(ctx context.Context, batchID string) ([]domain.ExperimentResult, error)
}
