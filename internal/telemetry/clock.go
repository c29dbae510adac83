// ABOUTME: Injectable nanosecond clock for telemetry timestamps
// ABOUTME: Production uses wall-anchored monotonic time; tests pass a ClockFunc
package telemetry

import "time"

// Clock returns the current timestamp in nanoseconds
type Clock interface {
	Now() int64
}

// ClockFunc adapts a function to Clock
type ClockFunc func() int64

// Now implements Clock
func (f ClockFunc) Now() int64 {
	return f()
}

// MonotonicClock returns Unix nanoseconds: the wall time of its creation plus the
// monotonic time elapsed since. Timestamps from separate processes appending to
// one file stay ordered, and a wall clock step never moves a running clock back.
type MonotonicClock struct {
	origin time.Time
	base   int64
}

// NewMonotonicClock anchors a clock at the current instant
func NewMonotonicClock() *MonotonicClock {
	now := time.Now()
	return &MonotonicClock{origin: now, base: now.UnixNano()}
}

// Now implements Clock
func (c *MonotonicClock) Now() int64 {
	return c.base + time.Since(c.origin).Nanoseconds()
}
