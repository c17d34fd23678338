package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"
	"traffic-signal-sim/internal/api/dto"
	"traffic-signal-sim/internal/domain"
	"traffic-signal-sim/internal/ports"
	"traffic-signal-sim/internal/services"
)

const (
	MaxBatchSize     = 50
	defaultListLimit = 50
	maxListLimit     = 500
)

// ExperimentHandler runs simulation batches and serves stored results.
type ExperimentHandler struct {
	Repo    ports.ExperimentRepository
	Cache   ports.ResultCache
	Workers int
	// Deadline of one batch; 0 leaves runs bound only by the request.
	RunTimeout time.Duration
}

func (h *ExperimentHandler) runContext(parent context.Context) (context.Context, context.CancelFunc) {
	if h.RunTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, h.RunTimeout)
}

// runFailure maps a RunExperiments error to a status and a client-safe message.
func runFailure(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidConfig):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrEventBudget):
		return http.StatusUnprocessableEntity, "experiment exceeds the simulation event budget"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "experiment batch timed out"
	}
	log.Printf("run experiments failed: %v", err)
	return http.StatusInternalServerError, "internal server error"
}

// decodeBatch turns a request body into validated configs.
// The returned error message is safe to show to clients.
func decodeBatch(req dto.RunExperimentsRequest) ([]domain.SimulationConfig, error) {
	n := len(req.Experiments)
	if n < 1 || n > MaxBatchSize {
		return nil, fmt.Errorf("experiments must contain between 1 and %d items", MaxBatchSize)
	}

	cfgs, err := req.Configs()
	if err != nil {
		return nil, err
	}
	for i, c := range cfgs {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("experiment %d: %w", i+1, err)
		}
		if err := c.CheckLimits(); err != nil {
			return nil, fmt.Errorf("experiment %d: %w", i+1, err)
		}
	}
	return cfgs, nil
}

// Run simulates every experiment of the request body and stores the batch.
func (h *ExperimentHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req dto.RunExperimentsRequest
	defer r.Body.Close()
	if err := decodeSingleJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	cfgs, err := decodeBatch(req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := h.runContext(r.Context())
	defer cancel()

	batch, err := services.RunExperiments(ctx, services.RunExperimentsRequest{
		Configs: cfgs,
		Workers: h.Workers,
	}, h.Repo, h.Cache)
	if err != nil {
		status, msg := runFailure(err)
		writeError(w, r, status, msg)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.RunExperimentsResponse{
		BatchID: batch.ID,
		Results: dto.FromResults(batch.Results),
	})
}

// List returns stored experiments, newest first.
func (h *ExperimentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxListLimit {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxListLimit))
			return
		}
		limit = n
	}

	var (
		results []domain.ExperimentResult
		err     error
	)
	if batchID := r.URL.Query().Get("batch"); batchID != "" {
		results, err = h.Repo.ListBatch(r.Context(), batchID)
	} else {
		results, err = h.Repo.ListExperiments(r.Context(), limit)
	}
	if err != nil {
		log.Printf("list experiments failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ListExperimentsResponse{Experiments: dto.FromResults(results)})
}

// Collection dispatches /experiments by method.
func (h *ExperimentHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.List(w, r)
	case http.MethodPost:
		h.Run(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// Get returns a single stored experiment.
func (h *ExperimentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !allowOnly(w, r, http.MethodGet) {
		return
	}

	id := r.PathValue("id")
	res, err := h.Repo.GetExperiment(r.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "experiment not found")
		return
	}
	if err != nil {
		log.Printf("get experiment failed: id=%s err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.FromResult(*res))
}
