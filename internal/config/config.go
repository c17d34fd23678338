package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the runtime configuration shared by the binaries.
type Config struct {
	Port        string
	DBDriver    string
	DBPath      string
	DatabaseURL string
	RedisAddr   string
	CacheTTL    time.Duration
	OutputDir   string
	Workers     int
	RunTimeout  time.Duration
}

// LoadDotEnv loads .env when present; a missing file is not an error.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
}

// Get returns the environment value of key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load reads Config from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port:        Get("PORT", "8080"),
		DBDriver:    strings.ToLower(Get("DB_DRIVER", "sqlite")),
		DBPath:      Get("DB_PATH", "data/experiments.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		OutputDir:   Get("OUTPUT_DIR", "visualizations"),
	}

	workers, err := strconv.Atoi(Get("WORKERS", "4"))
	if err != nil || workers < 1 {
		return Config{}, fmt.Errorf("load config: WORKERS must be a positive integer, got %q", os.Getenv("WORKERS"))
	}
	cfg.Workers = workers

	ttl, err := time.ParseDuration(Get("CACHE_TTL", "24h"))
	if err != nil || ttl < 0 {
		return Config{}, fmt.Errorf("load config: CACHE_TTL must be a non-negative duration, got %q", os.Getenv("CACHE_TTL"))
	}
	cfg.CacheTTL = ttl

	runTimeout, err := time.ParseDuration(Get("RUN_TIMEOUT", "1m"))
	if err != nil || runTimeout <= 0 {
		return Config{}, fmt.Errorf("load config: RUN_TIMEOUT must be a positive duration, got %q", os.Getenv("RUN_TIMEOUT"))
	}
	cfg.RunTimeout = runTimeout

	switch cfg.DBDriver {
	case "sqlite":
	case "pgx":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return Config{}, errors.New("load config: DATABASE_URL is required when DB_DRIVER=pgx")
		}
	default:
		return Config{}, fmt.Errorf("load config: DB_DRIVER must be sqlite or pgx, got %q", cfg.DBDriver)
	}

	return cfg, nil
}

// DSN is the data source name for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == "pgx" {
		return c.DatabaseURL
	}
	return c.DBPath
}
