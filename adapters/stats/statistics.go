// Package stats provides the correlation statistics that can be plugged
// into the bootstrap pipeline. Each statistic computes a point estimate
// plus an analytic p-value for the observed data; during resampling only
// the estimate is consumed.
package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"bootstat/domain/bootstrap"
	"bootstat/domain/core"
)

// DefaultMethod is used when the caller does not name a statistic.
const DefaultMethod = "spearman"

// Statistic computes a scalar association measure for paired samples
type Statistic interface {
	Name() string
	Description() string
	Compute(x, y []float64) (bootstrap.StatValue, error)
}

// Registry holds the available statistics, keyed by lowercase name
type Registry struct {
	statistics map[string]Statistic
}

// NewRegistry creates a registry with the built-in statistics
func NewRegistry() *Registry {
	r := &Registry{statistics: make(map[string]Statistic)}
	r.Register(NewPearsonStatistic())
	r.Register(NewSpearmanStatistic())
	return r
}

// Register adds a statistic under its lowercase name
func (r *Registry) Register(s Statistic) {
	r.statistics[strings.ToLower(s.Name())] = s
}

// ByName resolves a statistic by name, case-insensitively. An empty name
// resolves to the default method.
func (r *Registry) ByName(name string) (Statistic, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultMethod
	}
	s, ok := r.statistics[key]
	if !ok {
		return nil, fmt.Errorf("method %q: %w", name, core.ErrUnknownMethod)
	}
	return s, nil
}

// Names returns the registered statistic names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.statistics))
	for name := range r.statistics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validatePair rejects empty or misaligned sample pairs
func validatePair(x, y []float64) error {
	if len(x) == 0 || len(y) == 0 {
		return core.ErrEmptyInput
	}
	if len(x) != len(y) {
		return core.NewShapeMismatchError(len(x), len(y))
	}
	if len(x) < 2 {
		return core.ErrInsufficientData
	}
	return nil
}

// pearsonCorrelation calculates the Pearson correlation coefficient.
// A zero denominator (constant input) yields 0.
func pearsonCorrelation(x, y []float64) float64 {
	n := float64(len(x))

	sumX, sumY := 0.0, 0.0
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX, meanY := sumX/n, sumY/n

	numerator := 0.0
	sumXX, sumYY := 0.0, 0.0
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		numerator += dx * dy
		sumXX += dx * dx
		sumYY += dy * dy
	}

	denominator := math.Sqrt(sumXX * sumYY)
	if denominator == 0 {
		return 0
	}

	return clampCorrelation(numerator / denominator)
}

// clampCorrelation keeps floating point noise inside [-1, 1]
func clampCorrelation(r float64) float64 {
	if r > 1.0 {
		return 1.0
	}
	if r < -1.0 {
		return -1.0
	}
	return r
}

// correlationPValue computes the exact two-tailed p-value for a correlation
// coefficient via Student's t-distribution with n-2 degrees of freedom.
func correlationPValue(r float64, n int) float64 {
	if n < 3 {
		return 1.0
	}
	if r >= 1.0 || r <= -1.0 {
		return 0.0
	}

	df := float64(n - 2)
	tStatistic := r * math.Sqrt(df/(1-r*r))
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}

	return 2 * (1 - tDist.CDF(math.Abs(tStatistic)))
}

// computeRanks converts values to ranks, averaging ties
func computeRanks(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return []float64{}
	}

	type pair struct {
		value float64
		index int
	}

	pairs := make([]pair, n)
	for i, val := range data {
		pairs[i] = pair{value: val, index: i}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].value < pairs[j].value
	})

	ranks := make([]float64, n)

	i := 0
	for i < n {
		j := i + 1
		for j < n && pairs[j].value == pairs[i].value {
			j++
		}

		groupSize := j - i
		avgRank := float64(i+1) + float64(groupSize-1)/2.0

		for k := i; k < j; k++ {
			ranks[pairs[k].index] = avgRank
		}

		i = j
	}

	return ranks
}
