package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrRunNotFound    = fmt.Errorf("%w: run", ErrNotFound)
	ErrSeriesNotFound = fmt.Errorf("%w: series", ErrNotFound)
	ErrUnknownMethod  = errors.New("unknown statistic method")

	// Validation errors
	ErrShapeMismatch    = errors.New("input arrays have mismatched lengths")
	ErrEmptyInput       = errors.New("input array is empty")
	ErrInvalidDrawCount = errors.New("replication count must be positive")
	ErrInvalidAlpha     = errors.New("alpha must lie strictly between 0 and 1")
	ErrEmptyEstimates   = errors.New("estimate vector is empty")
	ErrRowMismatch      = errors.New("resample matrices have mismatched draw counts")
	ErrNilStatistic     = errors.New("statistic function is nil")
	ErrNilRNG           = errors.New("random source is nil")
	ErrInsufficientData = errors.New("not enough observations for statistic")

	// Determinism errors
	ErrSeedMismatch = errors.New("seed validation mismatch")
)

// Error constructors with context
func NewShapeMismatchError(want, got int) error {
	return fmt.Errorf("%w: expected %d rows, got %d", ErrShapeMismatch, want, got)
}

func NewRowMismatchError(a, b int) error {
	return fmt.Errorf("%w: %d vs %d", ErrRowMismatch, a, b)
}

func NewDrawError(draw int, err error) error {
	return fmt.Errorf("statistic failed on draw %d: %w", draw, err)
}

func NewAlphaError(alpha float64) error {
	return fmt.Errorf("%w: got %g", ErrInvalidAlpha, alpha)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrShapeMismatch) ||
		errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrInvalidDrawCount) ||
		errors.Is(err, ErrInvalidAlpha) ||
		errors.Is(err, ErrEmptyEstimates) ||
		errors.Is(err, ErrRowMismatch) ||
		errors.Is(err, ErrNilStatistic) ||
		errors.Is(err, ErrNilRNG) ||
		errors.Is(err, ErrInsufficientData)
}
