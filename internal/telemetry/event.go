// ABOUTME: Metric event model and CSV line encoding for the telemetry log
// ABOUTME: One event is one line: timestamp,name,action,value
package telemetry

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// Action tells how an event's value should be interpreted
type Action string

const (
	ActionIncrement  Action = "increment"
	ActionDecrement  Action = "decrement"
	ActionValue      Action = "value"
	ActionDuration   Action = "duration"
	ActionImpression Action = "impression"
	ActionAction     Action = "action"
)

// Header is the first line of every telemetry file
var Header = []string{"timestamp", "name", "action", "value"}

// Event is one immutable telemetry record
type Event struct {
	Timestamp int64 // nanoseconds on the recorder's monotonic clock
	Name      string
	Action    Action
	Value     string
}

// Record returns the CSV fields of the event
func (e Event) Record() []string {
	return []string{strconv.FormatInt(e.Timestamp, 10), e.Name, string(e.Action), e.Value}
}

// Line renders the event as one complete CSV line including the trailing newline
func (e Event) Line() []byte {
	return encodeLine(e.Record())
}

func encodeLine(fields []string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(fields)
	w.Flush()
	return buf.Bytes()
}
