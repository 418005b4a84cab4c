package stats

import (
	"bootstat/domain/bootstrap"
)

// SpearmanStatistic measures monotonic association using rank correlation
type SpearmanStatistic struct{}

// NewSpearmanStatistic creates a new Spearman correlation statistic
func NewSpearmanStatistic() *SpearmanStatistic {
	return &SpearmanStatistic{}
}

func (s *SpearmanStatistic) Name() string {
	return "spearman"
}

func (s *SpearmanStatistic) Description() string {
	return "Monotonic rank correlation, robust to outliers and non-normality"
}

// Compute returns Spearman's rho with its two-tailed analytic p-value.
// Rho is Pearson's r applied to tie-averaged ranks, which stays exact
// when the samples contain ties.
func (s *SpearmanStatistic) Compute(x, y []float64) (bootstrap.StatValue, error) {
	if err := validatePair(x, y); err != nil {
		return bootstrap.StatValue{}, err
	}

	rho := pearsonCorrelation(computeRanks(x), computeRanks(y))
	return bootstrap.StatValue{
		Estimate: rho,
		PValue:   correlationPValue(rho, len(x)),
	}, nil
}
