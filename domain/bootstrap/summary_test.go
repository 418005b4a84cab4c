package bootstrap

import (
	"errors"
	"math"
	"testing"

	"bootstat/domain/core"
)

func TestSummarizeKnownDistribution(t *testing.T) {
	estimates := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	summary, err := Summarize(estimates)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if summary.Mean != 5 {
		t.Fatalf("expected mean 5, got %v", summary.Mean)
	}
	if summary.Min != 2 || summary.Max != 9 {
		t.Fatalf("expected range [2, 9], got [%v, %v]", summary.Min, summary.Max)
	}
	if summary.Median != 4.5 {
		t.Fatalf("expected median 4.5, got %v", summary.Median)
	}
	wantStdDev := math.Sqrt(32.0 / 7.0)
	if math.Abs(summary.StdDev-wantStdDev) > 1e-9 {
		t.Fatalf("expected sample stddev %v, got %v", wantStdDev, summary.StdDev)
	}
	if summary.Count != 8 {
		t.Fatalf("expected count 8, got %v", summary.Count)
	}
}

func TestSummarizeExcludesNonFinite(t *testing.T) {
	estimates := []float64{1, math.NaN(), 3, math.Inf(1)}

	summary, err := Summarize(estimates)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if summary.Mean != 2 || summary.Min != 1 || summary.Max != 3 || summary.Median != 2 {
		t.Fatalf("non-finite values leaked into the summary: %+v", summary)
	}
	if summary.Count != 4 {
		t.Fatalf("count must include non-finite draws, got %v", summary.Count)
	}
}

func TestSummarizeSingleValue(t *testing.T) {
	summary, err := Summarize([]float64{7.5})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.Mean != 7.5 || summary.Median != 7.5 || summary.Min != 7.5 || summary.Max != 7.5 {
		t.Fatalf("unexpected single-value summary: %+v", summary)
	}
	if summary.StdDev != 0 {
		t.Fatalf("single value has no spread, got stddev %v", summary.StdDev)
	}
}

func TestSummarizeAllNonFinite(t *testing.T) {
	summary, err := Summarize([]float64{math.NaN(), math.Inf(-1)})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.Count != 2 {
		t.Fatalf("expected count 2, got %v", summary.Count)
	}
	if summary.Mean != 0 || summary.StdDev != 0 || summary.Min != 0 || summary.Max != 0 {
		t.Fatalf("expected zeroed summary, got %+v", summary)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if _, err := Summarize(nil); !errors.Is(err, core.ErrEmptyEstimates) {
		t.Fatalf("expected %v, got %v", core.ErrEmptyEstimates, err)
	}
}

func TestHistogramEqualWidthBins(t *testing.T) {
	estimates := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	binsOut, err := Histogram(estimates, 5)
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}

	if len(binsOut) != 5 {
		t.Fatalf("expected 5 bins, got %d", len(binsOut))
	}
	total := 0
	for i, bin := range binsOut {
		if bin.Count != 2 {
			t.Fatalf("bin %d [%v, %v): expected count 2, got %d", i, bin.Lower, bin.Upper, bin.Count)
		}
		total += bin.Count
	}
	if total != len(estimates) {
		t.Fatalf("expected every value binned, got %d of %d", total, len(estimates))
	}
	if binsOut[0].Lower != 0 {
		t.Fatalf("expected first bin to start at the minimum, got %v", binsOut[0].Lower)
	}
	if math.Abs(binsOut[4].Upper-9) > 1e-9 {
		t.Fatalf("expected last bin to end at the maximum, got %v", binsOut[4].Upper)
	}
}

func TestHistogramTopEdgeLandsInLastBin(t *testing.T) {
	binsOut, err := Histogram([]float64{0, 10}, 4)
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	if binsOut[3].Count != 1 {
		t.Fatalf("maximum value must land in the last bin, got %+v", binsOut)
	}
}

func TestHistogramDegenerateDistribution(t *testing.T) {
	binsOut, err := Histogram([]float64{5, 5, 5}, 8)
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	if len(binsOut) != 1 {
		t.Fatalf("expected a single bin for a constant distribution, got %d", len(binsOut))
	}
	if binsOut[0].Count != 3 {
		t.Fatalf("expected all values in the single bin, got %d", binsOut[0].Count)
	}
}

func TestHistogramDefaultBinCount(t *testing.T) {
	estimates := make([]float64, 50)
	for i := range estimates {
		estimates[i] = float64(i)
	}
	binsOut, err := Histogram(estimates, 0)
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	if len(binsOut) != 10 {
		t.Fatalf("expected the default of 10 bins, got %d", len(binsOut))
	}
}
