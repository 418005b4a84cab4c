package ports

import (
	"context"

	"bootstat/models"

	"github.com/google/uuid"
)

// RunRepository persists scalar summaries of completed analysis runs.
// Resample matrices and estimate vectors are never stored; only the
// headline numbers a run produced.
type RunRepository interface {
	// SaveRun stores the scalar summary of a completed run
	SaveRun(ctx context.Context, record *models.RunRecord) error

	// GetRun retrieves a run summary by ID
	GetRun(ctx context.Context, runID uuid.UUID) (*models.RunRecord, error)

	// ListRecentRuns returns the most recent run summaries, newest first
	ListRecentRuns(ctx context.Context, limit int) ([]*models.RunRecord, error)
}
