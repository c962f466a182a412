package run

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/objones25/latent/internal/monitor"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	dataset    TEXT NOT NULL,
	model      TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS run_metrics (
	run_id TEXT NOT NULL REFERENCES runs(id),
	name   TEXT NOT NULL,
	value  REAL NOT NULL,
	PRIMARY KEY (run_id, name)
);`

// SQLiteStore persists runs in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed initializes) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// SaveRun writes the run and its metric mapping in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, r *Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		monitor.RunsPersisted.WithLabelValues("sqlite", "error").Inc()
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, dataset, model, created_at) VALUES (?, ?, ?, ?)`,
		r.ID, r.Dataset, r.Model, r.CreatedAt,
	); err != nil {
		monitor.RunsPersisted.WithLabelValues("sqlite", "error").Inc()
		return fmt.Errorf("failed to insert run: %w", err)
	}
	for name, value := range r.Metrics {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_metrics (run_id, name, value) VALUES (?, ?, ?)`,
			r.ID, name, value,
		); err != nil {
			monitor.RunsPersisted.WithLabelValues("sqlite", "error").Inc()
			return fmt.Errorf("failed to insert metric %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		monitor.RunsPersisted.WithLabelValues("sqlite", "error").Inc()
		return fmt.Errorf("failed to commit run: %w", err)
	}

	monitor.RunsPersisted.WithLabelValues("sqlite", "success").Inc()
	log.Debug().Str("run", r.ID).Int("metrics", len(r.Metrics)).Msg("Run persisted to sqlite")
	return nil
}

// GetRun loads a run and its metrics by id.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	r := &Run{ID: id, Metrics: make(map[string]float64)}
	err := s.db.QueryRowContext(ctx,
		`SELECT dataset, model, created_at FROM runs WHERE id = ?`, id,
	).Scan(&r.Dataset, &r.Model, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, value FROM run_metrics WHERE run_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load metrics: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metric: %w", err)
		}
		r.Metrics[name] = value
	}
	return r, rows.Err()
}

// ListRuns returns all run ids, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
