// Package postgres persists completed analysis results keyed by
// fingerprint, serving as the durable level behind the in-memory cache.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"tabscope/domain/analysis"
	"tabscope/domain/core"
	"tabscope/ports"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS analysis_results (
	fingerprint  TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL,
	dataset_name TEXT NOT NULL,
	row_count    BIGINT NOT NULL,
	column_count INTEGER NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	payload      JSONB NOT NULL
)`

// resultStore implements the ResultStore interface
type resultStore struct {
	db *sqlx.DB
}

// Connect opens a database handle and ensures the results table exists
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, core.NewDatasetAccessError("postgres", err)
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure results table: %w", err)
	}
	return db, nil
}

// NewResultStore creates a fingerprint-keyed result store
func NewResultStore(db *sqlx.DB) ports.ResultStore {
	return &resultStore{db: db}
}

// Save inserts a completed result. Results are append-only: a
// fingerprint already present is left untouched, because equal
// fingerprints imply equal results.
func (s *resultStore) Save(ctx context.Context, result *analysis.AnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	query := `INSERT INTO analysis_results (
		fingerprint, run_id, dataset_name, row_count, column_count, created_at, payload
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (fingerprint) DO NOTHING`

	_, err = s.db.ExecContext(ctx, query,
		string(result.Fingerprint), string(result.RunID), result.DatasetName,
		result.Rows, result.ColumnCount, result.CreatedAt, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis result: %w", err)
	}
	return nil
}

// Find retrieves a stored result by fingerprint
func (s *resultStore) Find(ctx context.Context, fp core.Fingerprint) (*analysis.AnalysisResult, error) {
	query := `SELECT payload FROM analysis_results WHERE fingerprint = $1`

	var payload []byte
	err := s.db.QueryRowContext(ctx, query, string(fp)).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get analysis result: %w", err)
	}

	var result analysis.AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis result: %w", err)
	}
	return &result, nil
}
