package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"traffic-signal-sim/internal/domain"
	"traffic-signal-sim/internal/platform/obs"
	"traffic-signal-sim/internal/ports"
)

// Dialect selects the placeholder style of the underlying driver.
type Dialect int

const (
	// SQLite uses "?" placeholders.
	SQLite Dialect = iota
	// Postgres uses "$1, $2, ..." placeholders (pgx).
	Postgres
)

// DialectFor maps a database/sql driver name to its Dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "pgx", "postgres":
		return Postgres, nil
	}
	return SQLite, fmt.Errorf("unsupported database driver %q", driver)
}

const experimentColumns = `
	id, batch_id, arrival_mean, service_mean, capacity, strategy,
	seed, avg_wait, throughput, vehicles_served, created_at
`

// SQL-backed implementation of the ExperimentRepository port.
type SQLExperimentRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLExperimentRepository(db *sql.DB, dialect Dialect) *SQLExperimentRepository {
	return &SQLExperimentRepository{DB: db, Dialect: dialect}
}

// rebind rewrites "?" placeholders for the repository dialect.
func (s *SQLExperimentRepository) rebind(query string) string {
	if s.Dialect != Postgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Store every result of a batch in one transaction.
func (s *SQLExperimentRepository) SaveBatch(
	ctx context.Context,
	batchID string,
	results []domain.ExperimentResult,
) (err error) {
	defer obs.Time(ctx, "experiments.repo.SaveBatch")(&err)

	if s.DB == nil {
		return errors.New("experiment repository: DB is nil")
	}
	if strings.TrimSpace(batchID) == "" {
		return errors.New("save batch: batch id must not be empty")
	}
	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save batch: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
	INSERT INTO experiments (
		id, batch_id, position, arrival_mean, service_mean, capacity, strategy,
		seed, avg_wait, throughput, vehicles_served, created_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("save batch: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range results {
		if strings.TrimSpace(r.ID) == "" {
			return fmt.Errorf("save batch: result at index %d has empty id", i)
		}

		createdAt := r.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}

		_, err := stmt.ExecContext(ctx,
			r.ID, batchID, i, r.ArrivalMean, r.ServiceMean, r.Capacity, string(r.Strategy),
			strconv.FormatUint(r.Seed, 10), r.AvgWait, r.Throughput, r.VehiclesServed, createdAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("save batch: insert experiment id=%s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save batch: commit tx: %w", err)
	}

	return nil
}

// Return one experiment by id, or ports.ErrNotFound.
func (s *SQLExperimentRepository) GetExperiment(ctx context.Context, id string) (*domain.ExperimentResult, error) {
	if s.DB == nil {
		return nil, errors.New("experiment repository: DB is nil")
	}

	row := s.DB.QueryRowContext(ctx, s.rebind(`SELECT`+experimentColumns+`FROM experiments WHERE id = ?;`), id)

	r, err := scanExperiment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get experiment %q: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get experiment %q: %w", id, err)
	}

	return r, nil
}

// Return up to limit experiments, newest first.
func (s *SQLExperimentRepository) ListExperiments(ctx context.Context, limit int) ([]domain.ExperimentResult, error) {
	if limit <= 0 {
		return []domain.ExperimentResult{}, nil
	}

	query := `SELECT` + experimentColumns + `FROM experiments
	ORDER BY created_at DESC, batch_id, position
	LIMIT ?;`

	out, err := s.query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list experiments: %w", err)
	}
	return out, nil
}

// Return the experiments of one batch in submission order.
func (s *SQLExperimentRepository) ListBatch(ctx context.Context, batchID string) ([]domain.ExperimentResult, error) {
	query := `SELECT` + experimentColumns + `FROM experiments
	WHERE batch_id = ?
	ORDER BY position;`

	out, err := s.query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("list batch %q: %w", batchID, err)
	}
	return out, nil
}

func (s *SQLExperimentRepository) query(ctx context.Context, query string, args ...any) ([]domain.ExperimentResult, error) {
	if s.DB == nil {
		return nil, errors.New("experiment repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query experiments table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ExperimentResult, 0, 16)
	for rows.Next() {
		r, err := scanExperiment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}

	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExperiment(row rowScanner) (*domain.ExperimentResult, error) {
	var (
		r        domain.ExperimentResult
		strategy string
		seed     string
	)

	err := row.Scan(
		&r.ID, &r.BatchID, &r.ArrivalMean, &r.ServiceMean, &r.Capacity, &strategy,
		&seed, &r.AvgWait, &r.Throughput, &r.VehiclesServed, &r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan row: %w", err)
	}

	r.Strategy = domain.Strategy(strategy)
	r.Seed, err = strconv.ParseUint(seed, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("scan row: parse seed %q: %w", seed, err)
	}
	r.CreatedAt = r.CreatedAt.UTC()

	return &r, nil
}
