package testkit

import (
	"math"
	"testing"

	"bootstat/adapters/stats"
)

func TestCorrelatedPairHitsTarget(t *testing.T) {
	kit := NewTestKit()
	x, y := kit.CorrelatedPair(2000, 0.7)

	value, err := stats.NewPearsonStatistic().Compute(x, y)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if math.Abs(value.Estimate-0.7) > 0.1 {
		t.Fatalf("expected sample correlation near 0.7, got %.4f", value.Estimate)
	}
}

func TestGeneratorsAreDeterministic(t *testing.T) {
	first, _ := NewTestKitWithSeed(7).CorrelatedPair(100, 0.5)
	second, _ := NewTestKitWithSeed(7).CorrelatedPair(100, 0.5)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("position %d: same seed generated different series", i)
		}
	}
}

func TestEquallyCorrelatedTripleSharesBase(t *testing.T) {
	kit := NewTestKit()
	a, b, c := kit.EquallyCorrelatedTriple(2000, 0.6)

	ab, err := stats.NewPearsonStatistic().Compute(a, b)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	ac, err := stats.NewPearsonStatistic().Compute(a, c)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if math.Abs(ab.Estimate-ac.Estimate) > 0.15 {
		t.Fatalf("expected similar correlations to the base series, got %.4f and %.4f",
			ab.Estimate, ac.Estimate)
	}
	if ab.Estimate < 0.3 || ac.Estimate < 0.3 {
		t.Fatalf("expected clearly positive correlations, got %.4f and %.4f",
			ab.Estimate, ac.Estimate)
	}
}

func TestLinearSeries(t *testing.T) {
	series := NewTestKit().LinearSeries(5)
	want := []float64{1, 2, 3, 4, 5}
	for i := range want {
		if series[i] != want[i] {
			t.Fatalf("position %d: expected %v, got %v", i, want[i], series[i])
		}
	}
}

func TestSkewedSeriesExercisesRankStatistics(t *testing.T) {
	kit := NewTestKit()
	raw := kit.SkewedSeries(500)

	logged := make([]float64, len(raw))
	for i, v := range raw {
		if v <= 0 {
			t.Fatalf("position %d: log-normal value must be positive, got %v", i, v)
		}
		logged[i] = math.Log(v)
	}

	// The log transform is monotone, so ranks are untouched and the rank
	// correlation stays perfect while the linear one is dragged down by
	// the skew.
	rank, err := stats.NewSpearmanStatistic().Compute(raw, logged)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if rank.Estimate != 1.0 {
		t.Fatalf("expected rho = 1.0 across a monotone transform, got %v", rank.Estimate)
	}

	linear, err := stats.NewPearsonStatistic().Compute(raw, logged)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if linear.Estimate >= 1.0 || linear.Estimate <= 0.5 {
		t.Fatalf("expected 0.5 < r < 1 on curved data, got %v", linear.Estimate)
	}
}
