package bootstrap

import (
	"github.com/montanaflynn/stats"

	"bootstat/domain/core"
)

// Summarize computes the shape of an estimate distribution. Non-finite
// estimates are excluded from the summary but still counted; a vector with
// no finite values yields a zeroed summary with the count intact.
func Summarize(estimates []float64) (DistributionSummary, error) {
	if len(estimates) == 0 {
		return DistributionSummary{}, core.ErrEmptyEstimates
	}

	finite := make([]float64, 0, len(estimates))
	for _, est := range estimates {
		if isFinite(est) {
			finite = append(finite, est)
		}
	}

	summary := DistributionSummary{Count: len(estimates)}
	if len(finite) == 0 {
		return summary, nil
	}

	data := stats.Float64Data(finite)

	mean, err := stats.Mean(data)
	if err != nil {
		return summary, err
	}
	min, err := stats.Min(data)
	if err != nil {
		return summary, err
	}
	max, err := stats.Max(data)
	if err != nil {
		return summary, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return summary, err
	}

	// Sample standard deviation is undefined for a single value.
	stdDev := 0.0
	if len(finite) > 1 {
		stdDev, err = stats.StandardDeviationSample(data)
		if err != nil {
			return summary, err
		}
	}

	summary.Mean = mean
	summary.StdDev = stdDev
	summary.Min = min
	summary.Max = max
	summary.Median = median
	return summary, nil
}

// Histogram bins the finite estimates into `bins` equal-width intervals
// spanning [min, max]. Values at the top edge land in the last bin.
func Histogram(estimates []float64, bins int) ([]HistogramBin, error) {
	if len(estimates) == 0 {
		return nil, core.ErrEmptyEstimates
	}
	if bins <= 0 {
		bins = 10
	}

	finite := make([]float64, 0, len(estimates))
	for _, est := range estimates {
		if isFinite(est) {
			finite = append(finite, est)
		}
	}
	if len(finite) == 0 {
		return []HistogramBin{}, nil
	}

	min, max := finite[0], finite[0]
	for _, v := range finite {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	width := (max - min) / float64(bins)
	result := make([]HistogramBin, bins)
	for i := range result {
		result[i] = HistogramBin{
			Lower: min + float64(i)*width,
			Upper: min + float64(i+1)*width,
		}
	}
	// Degenerate distribution: everything in one bin.
	if width == 0 {
		result[0].Count = len(finite)
		result[0].Upper = max
		return result[:1], nil
	}

	for _, v := range finite {
		bin := int((v - min) / width)
		if bin >= bins {
			bin = bins - 1
		}
		result[bin].Count++
	}

	return result, nil
}
