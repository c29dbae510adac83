// ABOUTME: Parses a telemetry CSV stream back into ordered metric events
// ABOUTME: The aggregation engine only depends on this ordered sequence, not on the file
package telemetry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// ReadEvents decodes every event from r, skipping the header line
func ReadEvents(r io.Reader) ([]Event, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Header)

	var events []Event
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading telemetry line %d: %w", line, err)
		}
		if line == 1 && record[0] == Header[0] {
			continue
		}

		ts, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("telemetry line %d: invalid timestamp %q: %w", line, record[0], err)
		}
		events = append(events, Event{
			Timestamp: ts,
			Name:      record[1],
			Action:    Action(record[2]),
			Value:     record[3],
		})
	}

	return events, nil
}

// ReadFile loads the events stored at path
func ReadFile(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening telemetry file: %w", err)
	}
	defer f.Close()

	return ReadEvents(f)
}
