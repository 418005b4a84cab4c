package stats

import (
	"bootstat/domain/bootstrap"
)

// PearsonStatistic measures linear association between paired samples
type PearsonStatistic struct{}

// NewPearsonStatistic creates a new Pearson correlation statistic
func NewPearsonStatistic() *PearsonStatistic {
	return &PearsonStatistic{}
}

func (s *PearsonStatistic) Name() string {
	return "pearson"
}

func (s *PearsonStatistic) Description() string {
	return "Linear correlation between paired samples"
}

// Compute returns Pearson's r with its two-tailed analytic p-value.
// Constant input yields r = 0.
func (s *PearsonStatistic) Compute(x, y []float64) (bootstrap.StatValue, error) {
	if err := validatePair(x, y); err != nil {
		return bootstrap.StatValue{}, err
	}

	r := pearsonCorrelation(x, y)
	return bootstrap.StatValue{
		Estimate: r,
		PValue:   correlationPValue(r, len(x)),
	}, nil
}
