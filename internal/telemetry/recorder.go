// ABOUTME: Append-only telemetry recorder writing one CSV line per metric event
// ABOUTME: Lines are fully composed before a single locked write, so readers never see partial lines
package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// FileName is the telemetry log inside a session directory
const FileName = "telemetry.csv"

// Recorder appends metric events to a sink
type Recorder struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	clock  Clock
	err    error
}

// NewRecorder writes the CSV header to w and returns a recorder appending to it
func NewRecorder(w io.Writer, clock Clock) (*Recorder, error) {
	if _, err := w.Write(encodeLine(Header)); err != nil {
		return nil, fmt.Errorf("writing telemetry header: %w", err)
	}
	return newRecorder(w, clock), nil
}

func newRecorder(w io.Writer, clock Clock) *Recorder {
	if clock == nil {
		clock = NewMonotonicClock()
	}
	return &Recorder{w: w, clock: clock}
}

// Create opens path for appending and returns a recorder owning the file.
// Existing events are kept; the header is written only into an empty file.
func Create(path string, clock Clock) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating telemetry directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening telemetry file: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("opening telemetry file: %w", err)
	}

	r := newRecorder(f, clock)
	if st.Size() == 0 {
		if _, err := f.Write(encodeLine(Header)); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("writing telemetry header: %w", err)
		}
	}
	r.closer = f
	return r, nil
}

// Increment records a positive delta
func (r *Recorder) Increment(name string, value float64) {
	r.record(name, ActionIncrement, formatFloat(value))
}

// Decrement records a negative delta; value is stored as a magnitude
func (r *Recorder) Decrement(name string, value float64) {
	r.record(name, ActionDecrement, formatFloat(value))
}

// Value records a point observation
func (r *Recorder) Value(name string, value float64) {
	r.record(name, ActionValue, formatFloat(value))
}

// Duration records one boundary of a start/end pair correlated by tag.
// Call it twice with the same tag; the distance between the calls is the duration.
func (r *Recorder) Duration(name, tag string) {
	r.record(name, ActionDuration, tag)
}

// Impression records a JSON payload describing something shown to the user
func (r *Recorder) Impression(name string, payload any) {
	r.record(name, ActionImpression, encodePayload(payload))
}

// Action records a JSON payload describing something the user did
func (r *Recorder) Action(name string, payload any) {
	r.record(name, ActionAction, encodePayload(payload))
}

// Err returns the first write error, if any
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Close releases the underlying file and reports the first write error
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closer != nil {
		if err := r.closer.Close(); err != nil && r.err == nil {
			r.err = err
		}
		r.closer = nil
	}
	return r.err
}

func (r *Recorder) record(name string, action Action, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := Event{Timestamp: r.clock.Now(), Name: name, Action: action, Value: value}.Line()
	if _, err := r.w.Write(line); err != nil && r.err == nil {
		r.err = fmt.Errorf("writing telemetry event %s: %w", name, err)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func encodePayload(payload any) string {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(payload))
	}
	return string(data)
}
