package api

import (
	"net/http"
	"time"
	"traffic-signal-sim/internal/api/handlers"
	"traffic-signal-sim/internal/ports"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
// cache may be nil; runTimeout <= 0 disables the per-batch deadline.
func NewRouter(repo ports.ExperimentRepository, cache ports.ResultCache, workers int, runTimeout time.Duration) http.Handler {
	mux := http.NewServeMux()

	expHandler := &handlers.ExperimentHandler{
		Repo:       repo,
		Cache:      cache,
		Workers:    workers,
		RunTimeout: runTimeout,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/experiments", expHandler.Collection)
	mux.HandleFunc("/experiments/stream", expHandler.Stream)
	mux.HandleFunc("/experiments/{id}", expHandler.Get)
	mux.HandleFunc("/charts/{file}", expHandler.Chart)

	return requestIDMiddleware(loggingMiddleware(mux))
}
