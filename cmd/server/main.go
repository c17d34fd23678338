package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"traffic-signal-sim/internal/adapters/cache"
	"traffic-signal-sim/internal/adapters/repositories"
	"traffic-signal-sim/internal/api"
	"traffic-signal-sim/internal/config"
	"traffic-signal-sim/internal/platform/db"
	"traffic-signal-sim/internal/ports"

	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (SQLite or Postgres, optional Redis) behind ports and starts the HTTP server.
func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	database, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	// Schema is created on startup for local runs; cmd/dbtool does the same for managed databases.
	if err := repositories.InitSchema(database); err != nil {
		log.Fatal(err)
	}

	dialect, err := repositories.DialectFor(cfg.DBDriver)
	if err != nil {
		log.Fatal(err)
	}
	repo := repositories.NewSQLExperimentRepository(database, dialect)

	var resultCache ports.ResultCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("redis unavailable, result cache disabled: addr=%s err=%v", cfg.RedisAddr, err)
		} else {
			resultCache = cache.NewRedisResultCache(client, cfg.CacheTTL)
			log.Printf("result cache enabled addr=%s ttl=%s", cfg.RedisAddr, cfg.CacheTTL)
		}
		cancel()
	}

	router := api.NewRouter(repo, resultCache, cfg.Workers, cfg.RunTimeout)

	// Write timeout covers the largest batch a request may run.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
		<-signals

		log.Println("shutdown signal received, draining connections...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown failed: %v", err)
		}
	}()

	log.Printf("Server listening addr=:%s driver=%s workers=%d", cfg.Port, cfg.DBDriver, cfg.Workers)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
