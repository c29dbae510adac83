// ABOUTME: Time-bucketed aggregation with bucket width picked from a fixed ladder
// ABOUTME: Buckets are contiguous and half-open, located by binary search
package stats

import (
	"fmt"
	"slices"
	"sort"
	"time"

	sl "github.com/montanaflynn/stats"

	"github.com/harper/mdtranslate/internal/telemetry"
)

// MaxBuckets bounds the number of buckets whenever the span fits the widest ladder entry
const MaxBuckets = 10

// Ladder holds the candidate bucket widths in ascending order
var Ladder = []time.Duration{
	time.Minute,
	5 * time.Minute,
	10 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
	time.Hour,
}

// Bucket is the half-open interval [Start, End) in event clock nanoseconds
type Bucket struct {
	Label string  `json:"label"`
	Start int64   `json:"start"`
	End   int64   `json:"end"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// RangeStat is the output of the range operation
type RangeStat struct {
	Units   string        `json:"units"`
	Width   time.Duration `json:"width"`
	Span    time.Duration `json:"span"`
	Buckets []Bucket      `json:"buckets"`
	Avg     float64       `json:"avg"`
}

// BucketWidth picks the smallest ladder width that splits span into at most MaxBuckets buckets,
// clamped to the ladder bounds
func BucketWidth(span time.Duration) time.Duration {
	ideal := span/MaxBuckets + 1
	idx, _ := slices.BinarySearch(Ladder, ideal)
	if idx >= len(Ladder) {
		idx = len(Ladder) - 1
	}
	return Ladder[idx]
}

// Range sums polarity-adjusted values into time buckets spanning the series
func Range(events []telemetry.Event, values []float64) (RangeStat, error) {
	if len(events) == 0 {
		return RangeStat{}, ErrEmptySeries
	}

	lo, hi := events[0].Timestamp, events[0].Timestamp
	for _, e := range events[1:] {
		lo = min(lo, e.Timestamp)
		hi = max(hi, e.Timestamp)
	}

	span := time.Duration(hi - lo)
	width := BucketWidth(span)
	count := int(span/width) + 1

	buckets := make([]Bucket, count)
	for k := range buckets {
		start := lo + int64(k)*int64(width)
		offset := time.Duration(k) * width
		buckets[k] = Bucket{
			Label: fmt.Sprintf("[%d..%d)", offset.Milliseconds(), (offset + width).Milliseconds()),
			Start: start,
			End:   start + int64(width),
		}
	}

	for i, e := range events {
		k := sort.Search(len(buckets), func(k int) bool { return buckets[k].Start > e.Timestamp }) - 1
		buckets[k].Value += values[i]
		buckets[k].Count++
	}

	sums := make([]float64, len(buckets))
	for i, b := range buckets {
		sums[i] = b.Value
	}
	avg, err := sl.Mean(sums)
	if err != nil {
		return RangeStat{}, err
	}

	return RangeStat{
		Units:   "milliseconds",
		Width:   width,
		Span:    span,
		Buckets: buckets,
		Avg:     avg,
	}, nil
}
