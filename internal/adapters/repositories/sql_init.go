package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the experiments schema. Works on SQLite and PostgreSQL.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createExperimentsQuery := `
	CREATE TABLE IF NOT EXISTS experiments (
		id TEXT PRIMARY KEY,
		batch_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		arrival_mean DOUBLE PRECISION NOT NULL,
		service_mean DOUBLE PRECISION NOT NULL,
		capacity INTEGER NOT NULL,
		strategy TEXT NOT NULL,
		seed TEXT NOT NULL,
		avg_wait DOUBLE PRECISION NOT NULL,
		throughput DOUBLE PRECISION NOT NULL,
		vehicles_served INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	`

	createBatchIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_experiments_batch_position
	ON experiments(batch_id, position);
	`

	createCreatedIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_experiments_created_at
	ON experiments(created_at);
	`

	statements := []string{
		createExperimentsQuery,
		createBatchIndexQuery,
		createCreatedIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
