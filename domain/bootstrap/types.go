// Package bootstrap implements joint bootstrap resampling and the
// percentile-interval machinery built on top of it: resample matrices,
// per-draw estimate vectors, empirical confidence intervals and two-sided
// p-values. The package is statistic-agnostic; callers supply a Statistic
// and an explicit RNG.
package bootstrap

import (
	"math"

	"bootstat/domain/core"
)

// Matrix holds bootstrap replications of a single series,
// one resampled row per draw.
type Matrix [][]float64

// Draws returns the number of replications in the matrix.
func (m Matrix) Draws() int {
	return len(m)
}

// SampleSize returns the length of each resampled row.
func (m Matrix) SampleSize() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// StatValue is the typed result of one statistic evaluation. Estimate is
// the value recorded per draw; PValue carries an analytic companion
// p-value when the statistic has one and is otherwise NaN.
type StatValue struct {
	Estimate float64 `json:"estimate"`
	PValue   float64 `json:"p_value"`
}

// Statistic evaluates a bivariate statistic on two aligned samples.
// Implementations must be pure: same inputs, same output.
type Statistic func(x, y []float64) (StatValue, error)

// ConfidenceInterval is an empirical percentile interval over a bootstrap
// estimate distribution.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Alpha float64 `json:"alpha"`
}

// Contains reports whether v falls inside the interval (inclusive).
func (ci ConfidenceInterval) Contains(v float64) bool {
	return v >= ci.Lower && v <= ci.Upper
}

// Excludes reports whether the interval excludes v entirely, the usual
// significance reading against a null value.
func (ci ConfidenceInterval) Excludes(v float64) bool {
	return !ci.Contains(v)
}

// Width returns the interval width.
func (ci ConfidenceInterval) Width() float64 {
	return ci.Upper - ci.Lower
}

// Significance is an empirical two-sided test of an estimate distribution
// against a reference value.
type Significance struct {
	Reference float64 `json:"reference"`
	PropBelow float64 `json:"prop_below"`
	PropAbove float64 `json:"prop_above"`
	PValue    float64 `json:"p_value"`
}

// DistributionSummary describes the shape of an estimate distribution.
type DistributionSummary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Count  int     `json:"count"`
}

// HistogramBin is one bar of a binned estimate distribution.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// validateAligned checks that the arrays share one positive length.
func validateAligned(arrays ...[]float64) (int, error) {
	if len(arrays) == 0 {
		return 0, core.ErrEmptyInput
	}
	n := len(arrays[0])
	if n == 0 {
		return 0, core.ErrEmptyInput
	}
	for _, arr := range arrays[1:] {
		if len(arr) != n {
			return 0, core.NewShapeMismatchError(n, len(arr))
		}
	}
	return n, nil
}

// isFinite reports whether v is a usable float (not NaN, not ±Inf).
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
