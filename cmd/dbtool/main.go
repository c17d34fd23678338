package main

import (
	"database/sql"
	"flag"
	"log"
	"traffic-signal-sim/internal/adapters/repositories"
	"traffic-signal-sim/internal/config"
	"traffic-signal-sim/internal/platform/db"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	driver := flag.String("driver", cfg.DBDriver, "database driver (sqlite or pgx)")
	dsn := flag.String("dsn", cfg.DSN(), "database file path (sqlite) or URL (pgx)")
	flag.Parse()

	database, err := db.Open(*driver, *dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	if err := initSchema(database); err != nil {
		log.Fatal(err)
	}
}

func initSchema(database *sql.DB) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(database); err != nil {
		return err
	}
	log.Println("Schema ready.")

	return nil
}
