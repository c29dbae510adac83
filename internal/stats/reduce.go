// ABOUTME: Scalar and distribution reductions over one metric's values
// ABOUTME: sum, avg, min, max, percentile, frequency and fixed-bin histogram
package stats

import (
	"math"
	"strconv"

	sl "github.com/montanaflynn/stats"
)

// PercentileRank is the rank reported by the percentile operation
const PercentileRank = 95

// HistogramBins is the number of bins of the histogram operation
const HistogramBins = 10

type reducer func(values []float64) (any, error)

var reducers = map[Operation]reducer{
	OpSum: func(values []float64) (any, error) {
		return sl.Sum(values)
	},
	OpAvg: func(values []float64) (any, error) {
		return sl.Mean(values)
	},
	OpMin: func(values []float64) (any, error) {
		return sl.Min(values)
	},
	OpMax: func(values []float64) (any, error) {
		return sl.Max(values)
	},
	OpCounter: func(values []float64) (any, error) {
		return len(values), nil
	},
	OpPercentile: func(values []float64) (any, error) {
		return sl.Percentile(values, PercentileRank)
	},
	OpFrequency: func(values []float64) (any, error) {
		return Frequency(values), nil
	},
	OpHistogram: func(values []float64) (any, error) {
		return NewHistogram(values, HistogramBins)
	},
}

// Frequency counts occurrences of each distinct value, keyed by its shortest decimal form
func Frequency(values []float64) map[string]int {
	freq := make(map[string]int)
	for _, v := range values {
		freq[strconv.FormatFloat(v, 'f', -1, 64)]++
	}
	return freq
}

// Histogram is a fixed-width binning of values between Min and Max
type Histogram struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Width  float64 `json:"width"`
	Counts []int   `json:"counts"`
}

// NewHistogram distributes values over bins equal-width bins; the last bin is closed on Max
func NewHistogram(values []float64, bins int) (Histogram, error) {
	if len(values) == 0 {
		return Histogram{}, ErrEmptySeries
	}
	if bins < 1 {
		bins = 1
	}

	lo, _ := sl.Min(values)
	hi, _ := sl.Max(values)
	width := (hi - lo) / float64(bins)

	h := Histogram{Min: lo, Max: hi, Width: width, Counts: make([]int, bins)}
	for _, v := range values {
		idx := 0
		if width > 0 {
			idx = int(math.Floor((v - lo) / width))
		}
		if idx >= bins {
			idx = bins - 1
		}
		h.Counts[idx]++
	}
	return h, nil
}
