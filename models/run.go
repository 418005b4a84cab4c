package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisKind distinguishes the run shapes the registry stores
type AnalysisKind string

const (
	AnalysisCorrelation AnalysisKind = "correlation"
	AnalysisDifference  AnalysisKind = "difference"
)

// RunRecord is the scalar summary of a completed bootstrap run. Only the
// headline numbers are kept; estimate vectors and resample matrices are
// recomputable from the seed and never persisted.
type RunRecord struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	Kind         AnalysisKind `json:"kind" db:"kind"`
	Method       string       `json:"method" db:"method"`
	SeriesA      string       `json:"series_a" db:"series_a"`
	SeriesB      string       `json:"series_b" db:"series_b"`
	SeriesC      string       `json:"series_c,omitempty" db:"series_c"`
	SampleSize   int          `json:"sample_size" db:"sample_size"`
	Replications int          `json:"replications" db:"replications"`
	Alpha        float64      `json:"alpha" db:"alpha"`
	Seed         int64        `json:"seed" db:"seed"`
	Observed     float64      `json:"observed" db:"observed"`
	CILower      float64      `json:"ci_lower" db:"ci_lower"`
	CIUpper      float64      `json:"ci_upper" db:"ci_upper"`
	PValue       float64      `json:"p_value" db:"p_value"`
	Fingerprint  string       `json:"fingerprint" db:"fingerprint"`
	RuntimeMs    int64        `json:"runtime_ms" db:"runtime_ms"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}
