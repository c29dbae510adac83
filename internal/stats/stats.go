// ABOUTME: Telemetry aggregation engine: event window -> per-metric statistics
// ABOUTME: Pure batch transform; one failing metric never blanks the rest of the report
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/harper/mdtranslate/internal/telemetry"
)

// ErrorValue replaces the value of a metric whose computation failed
const ErrorValue = "error"

var (
	// ErrNoSeries means the window holds no events for the metric
	ErrNoSeries = errors.New("no events for metric")
	// ErrEmptySeries means the series exists but yields nothing to reduce
	ErrEmptySeries = errors.New("empty series")
)

// Statistic is the computed output of one metric
type Statistic struct {
	Operation Operation `json:"operation"`
	Value     any       `json:"value"`
	Err       error     `json:"-"`
}

// Failed reports whether the metric could not be computed
func (s Statistic) Failed() bool {
	return s.Err != nil
}

// Finals is the full report for one time window
type Finals struct {
	Statistics map[string]Statistic `json:"statistics"`
	From       int64                `json:"from"`
	To         int64                `json:"to"`
	Schema     Schema               `json:"schema"`
}

// Compute aggregates the events whose timestamp lies in [from, to] according to schema
func Compute(from, to int64, schema Schema, events []telemetry.Event) Finals {
	series := buildSeries(from, to, events)

	statistics := make(map[string]Statistic, len(schema))
	for name, kpi := range schema {
		statistics[name] = evaluate(name, kpi.Operation, series[name])
	}

	return Finals{Statistics: statistics, From: from, To: to, Schema: schema}
}

// buildSeries filters the window and groups events by name, ordered by timestamp.
// The sort is stable so events sharing a timestamp keep their arrival order.
func buildSeries(from, to int64, events []telemetry.Event) map[string][]telemetry.Event {
	series := make(map[string][]telemetry.Event)
	for _, e := range events {
		if e.Timestamp < from || e.Timestamp > to {
			continue
		}
		series[e.Name] = append(series[e.Name], e)
	}
	for name := range series {
		s := series[name]
		sort.SliceStable(s, func(i, j int) bool { return s[i].Timestamp < s[j].Timestamp })
	}
	return series
}

func evaluate(name string, op Operation, events []telemetry.Event) (stat Statistic) {
	stat.Operation = op

	defer func() {
		if r := recover(); r != nil {
			stat.Err = fmt.Errorf("metric %s: %v", name, r)
		}
		if stat.Err != nil {
			stat.Value = ErrorValue
		}
	}()

	if len(events) == 0 {
		stat.Err = fmt.Errorf("metric %s: %w", name, ErrNoSeries)
		return stat
	}

	switch op {
	case OpDuration:
		stat.Value, stat.Err = Durations(events)
		return stat
	case OpCounter:
		stat.Value = len(events)
		return stat
	}

	values, err := Values(events)
	if err != nil {
		stat.Err = fmt.Errorf("metric %s: %w", name, err)
		return stat
	}

	switch op {
	case OpRange:
		stat.Value, stat.Err = Range(events, values)
	default:
		reduce, ok := reducers[op]
		if !ok {
			stat.Err = fmt.Errorf("metric %s: invalid operation %q", name, op)
			return stat
		}
		stat.Value, stat.Err = reduce(values)
	}
	if stat.Err != nil {
		stat.Err = fmt.Errorf("metric %s: %w", name, stat.Err)
	}
	return stat
}

// Polarity returns the signed numeric value of an event: decrements count negative
func Polarity(e telemetry.Event) (float64, error) {
	v, err := strconv.ParseFloat(e.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric value %q at %d", e.Value, e.Timestamp)
	}
	if e.Action == telemetry.ActionDecrement {
		return -math.Abs(v), nil
	}
	return v, nil
}

// Values returns the polarity-adjusted values of a series
func Values(events []telemetry.Event) ([]float64, error) {
	values := make([]float64, len(events))
	for i, e := range events {
		v, err := Polarity(e)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
