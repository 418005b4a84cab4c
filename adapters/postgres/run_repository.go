package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bootstat/domain/core"
	"bootstat/models"
	"bootstat/ports"
)

// RunRepositoryImpl implements RunRepository for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

// EnsureSchema creates the run registry table when it does not exist.
// The registry is a single append-only table, so the schema lives here
// rather than in a migration framework.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS bootstrap_runs (
			id UUID PRIMARY KEY,
			kind TEXT NOT NULL,
			method TEXT NOT NULL,
			series_a TEXT NOT NULL,
			series_b TEXT NOT NULL,
			series_c TEXT NOT NULL DEFAULT '',
			sample_size INTEGER NOT NULL,
			replications INTEGER NOT NULL,
			alpha DOUBLE PRECISION NOT NULL,
			seed BIGINT NOT NULL,
			observed DOUBLE PRECISION NOT NULL,
			ci_lower DOUBLE PRECISION NOT NULL,
			ci_upper DOUBLE PRECISION NOT NULL,
			p_value DOUBLE PRECISION NOT NULL,
			fingerprint TEXT NOT NULL,
			runtime_ms BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_bootstrap_runs_created_at
			ON bootstrap_runs (created_at DESC)`)
	if err != nil {
		return fmt.Errorf("failed to ensure run registry schema: %w", err)
	}
	return nil
}

// SaveRun stores the scalar summary of a completed run
func (r *RunRepositoryImpl) SaveRun(ctx context.Context, record *models.RunRecord) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO bootstrap_runs (
			id, kind, method, series_a, series_b, series_c,
			sample_size, replications, alpha, seed,
			observed, ci_lower, ci_upper, p_value,
			fingerprint, runtime_ms, created_at
		) VALUES (
			:id, :kind, :method, :series_a, :series_b, :series_c,
			:sample_size, :replications, :alpha, :seed,
			:observed, :ci_lower, :ci_upper, :p_value,
			:fingerprint, :runtime_ms, :created_at
		)
		ON CONFLICT (id) DO NOTHING
	`, record)
	return err
}

// GetRun retrieves a run summary by ID
func (r *RunRepositoryImpl) GetRun(ctx context.Context, runID uuid.UUID) (*models.RunRecord, error) {
	var record models.RunRecord
	err := r.db.GetContext(ctx, &record, `
		SELECT id, kind, method, series_a, series_b, series_c,
		       sample_size, replications, alpha, seed,
		       observed, ci_lower, ci_upper, p_value,
		       fingerprint, runtime_ms, created_at
		FROM bootstrap_runs
		WHERE id = $1
	`, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, runID)
		}
		return nil, err
	}
	return &record, nil
}

// ListRecentRuns returns the most recent run summaries, newest first
func (r *RunRepositoryImpl) ListRecentRuns(ctx context.Context, limit int) ([]*models.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var records []*models.RunRecord
	err := r.db.SelectContext(ctx, &records, `
		SELECT id, kind, method, series_a, series_b, series_c,
		       sample_size, replications, alpha, seed,
		       observed, ci_lower, ci_upper, p_value,
		       fingerprint, runtime_ms, created_at
		FROM bootstrap_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	return records, err
}
