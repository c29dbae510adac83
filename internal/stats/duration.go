// ABOUTME: Start/end pairing of duration events correlated by tag
// ABOUTME: Pairs consecutive events per tag in arrival order; an odd trailing event is dropped
package stats

import (
	"slices"
	"sort"
	"time"

	sl "github.com/montanaflynn/stats"

	"github.com/harper/mdtranslate/internal/telemetry"
)

// Pair is one measured start/end interval
type Pair struct {
	Tag      string        `json:"tag"`
	Start    int64         `json:"start"`
	End      int64         `json:"end"`
	Duration time.Duration `json:"duration"`
}

// DurationStat is the output of the duration operation; Min/Max/Avg are milliseconds
type DurationStat struct {
	Units    string  `json:"units"`
	Count    int     `json:"count"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Avg      float64 `json:"avg"`
	Timeline []Pair  `json:"timeline"` // ordered by start
	Mapping  []Pair  `json:"mapping"`  // ordered by duration
	Dropped  int     `json:"dropped"`  // unpaired trailing events
}

// PairDurations groups events by tag and pairs them first-with-second in timestamp order.
// The result is sorted by the start of each pair. A tag with an odd number of events
// loses its last event; that count is returned as dropped.
func PairDurations(events []telemetry.Event) (pairs []Pair, dropped int) {
	ordered := slices.Clone(events)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Timestamp < ordered[j].Timestamp })

	byTag := make(map[string][]telemetry.Event)
	var tags []string
	for _, e := range ordered {
		if _, seen := byTag[e.Value]; !seen {
			tags = append(tags, e.Value)
		}
		byTag[e.Value] = append(byTag[e.Value], e)
	}

	for _, tag := range tags {
		records := byTag[tag]
		for i := 0; i+1 < len(records); i += 2 {
			start, end := records[i], records[i+1]
			pairs = append(pairs, Pair{
				Tag:      tag,
				Start:    start.Timestamp,
				End:      end.Timestamp,
				Duration: time.Duration(end.Timestamp - start.Timestamp),
			})
		}
		dropped += len(records) % 2
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Start < pairs[j].Start })
	return pairs, dropped
}

// Durations reduces paired duration events to summary statistics
func Durations(events []telemetry.Event) (DurationStat, error) {
	pairs, dropped := PairDurations(events)
	if len(pairs) == 0 {
		return DurationStat{}, ErrEmptySeries
	}

	ms := make([]float64, len(pairs))
	for i, p := range pairs {
		ms[i] = float64(p.Duration) / float64(time.Millisecond)
	}
	lo, _ := sl.Min(ms)
	hi, _ := sl.Max(ms)
	avg, _ := sl.Mean(ms)

	mapping := slices.Clone(pairs)
	sort.SliceStable(mapping, func(i, j int) bool { return mapping[i].Duration < mapping[j].Duration })

	return DurationStat{
		Units:    "milliseconds",
		Count:    len(pairs),
		Min:      lo,
		Max:      hi,
		Avg:      avg,
		Timeline: pairs,
		Mapping:  mapping,
		Dropped:  dropped,
	}, nil
}
