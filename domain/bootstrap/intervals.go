package bootstrap

import (
	"sort"

	"bootstat/domain/core"
)

// ComputeCIs returns the empirical (alpha/2, 1-alpha/2) percentile interval
// of the estimate distribution. Quantiles interpolate linearly between the
// closest order statistics at position q*(n-1) on a sorted copy; the input
// slice is left untouched and its order does not affect the result. A
// single-element input collapses to a zero-width interval at that value.
func ComputeCIs(estimates []float64, alpha float64) (ConfidenceInterval, error) {
	if len(estimates) == 0 {
		return ConfidenceInterval{}, core.ErrEmptyEstimates
	}
	if alpha <= 0 || alpha >= 1 {
		return ConfidenceInterval{}, core.NewAlphaError(alpha)
	}

	sorted := make([]float64, len(estimates))
	copy(sorted, estimates)
	sort.Float64s(sorted)

	return ConfidenceInterval{
		Lower: quantile(sorted, alpha/2),
		Upper: quantile(sorted, 1-alpha/2),
		Alpha: alpha,
	}, nil
}

// ComputePValue computes an empirical two-sided p-value of the estimate
// distribution against a reference value: twice the smaller of the
// fractions strictly below and strictly above, capped at 1.0. Ties at the
// reference count toward neither side.
func ComputePValue(estimates []float64, value float64) (Significance, error) {
	if len(estimates) == 0 {
		return Significance{}, core.ErrEmptyEstimates
	}

	below, above := 0, 0
	for _, est := range estimates {
		switch {
		case est < value:
			below++
		case est > value:
			above++
		}
	}

	n := float64(len(estimates))
	propBelow := float64(below) / n
	propAbove := float64(above) / n

	p := 2 * propBelow
	if propAbove < propBelow {
		p = 2 * propAbove
	}
	if p > 1.0 {
		p = 1.0
	}

	return Significance{
		Reference: value,
		PropBelow: propBelow,
		PropAbove: propAbove,
		PValue:    p,
	}, nil
}

// quantile interpolates linearly between closest order statistics.
// sorted must be ascending and non-empty; q in [0, 1].
func quantile(sorted []float64, q float64) float64 {
	index := q * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
