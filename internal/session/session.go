// ABOUTME: Session directory holding the artifacts of one translation run
// ABOUTME: exec.log, telemetry.csv, per-job logs and errors.log live side by side
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harper/mdtranslate/internal/stats"
	"github.com/harper/mdtranslate/internal/telemetry"
)

// ExecLogFile records how the session was started
const ExecLogFile = "exec.log"

// Session is an open run with its telemetry sink
type Session struct {
	ID       string
	Dir      string
	Recorder *telemetry.Recorder
	Started  int64
	clock    telemetry.Clock
}

// NewID returns a sortable, unique session id
func NewID(now time.Time) string {
	return now.Format("20060102-150405") + "-" + uuid.New().String()[:8]
}

// Open creates root/id if needed and appends to its telemetry file.
// Reopening an id keeps the events of earlier runs.
func Open(root, id string, clock telemetry.Clock) (*Session, error) {
	if id == "" {
		id = NewID(time.Now())
	}
	if clock == nil {
		clock = telemetry.NewMonotonicClock()
	}

	dir := filepath.Join(root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}
	rec, err := telemetry.Create(filepath.Join(dir, telemetry.FileName), clock)
	if err != nil {
		return nil, err
	}

	return &Session{ID: id, Dir: dir, Recorder: rec, Started: clock.Now(), clock: clock}, nil
}

// Path returns name inside the session directory
func (s *Session) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

// WriteExecLog records the command line with secrets masked
func (s *Session) WriteExecLog(args []string) error {
	line := strings.Join(MaskArgs(args), " ") + "\n"
	if err := os.WriteFile(s.Path(ExecLogFile), []byte(line), 0o644); err != nil {
		return fmt.Errorf("writing exec log: %w", err)
	}
	return nil
}

// Stats aggregates the telemetry recorded since the session started
func (s *Session) Stats(schema stats.Schema) (stats.Finals, error) {
	events, err := telemetry.ReadFile(s.Path(telemetry.FileName))
	if err != nil {
		return stats.Finals{}, err
	}
	return stats.Compute(s.Started, s.clock.Now(), schema, events), nil
}

// Close flushes and closes the telemetry sink
func (s *Session) Close() error {
	return s.Recorder.Close()
}

// Info describes a session found on disk
type Info struct {
	ID       string    `json:"id"`
	Dir      string    `json:"dir"`
	Modified time.Time `json:"modified"`
	Size     int64     `json:"telemetry_bytes"`
}

// List returns the sessions under root, newest first
func List(root string) ([]Info, error) {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	var infos []Info
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		st, err := os.Stat(filepath.Join(dir, telemetry.FileName))
		if err != nil {
			continue
		}
		infos = append(infos, Info{ID: e.Name(), Dir: dir, Modified: st.ModTime(), Size: st.Size()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Modified.After(infos[j].Modified) })
	return infos, nil
}

// ReadStats aggregates every event of a stored session
func ReadStats(root, id string, schema stats.Schema) (stats.Finals, error) {
	events, err := telemetry.ReadFile(filepath.Join(root, id, telemetry.FileName))
	if err != nil {
		return stats.Finals{}, fmt.Errorf("session %s: %w", id, err)
	}

	var from, to int64
	for i, e := range events {
		if i == 0 || e.Timestamp < from {
			from = e.Timestamp
		}
		if e.Timestamp > to {
			to = e.Timestamp
		}
	}
	return stats.Compute(from, to, schema, events), nil
}

var secretMarkers = []string{"token", "key", "secret", "password"}

// MaskArgs hides the values of secret-looking flags, keeping a short prefix
func MaskArgs(args []string) []string {
	out := make([]string, len(args))
	maskNext := false
	for i, arg := range args {
		switch {
		case maskNext:
			out[i] = mask(arg)
			maskNext = false
		case strings.HasPrefix(arg, "-") && isSecretFlag(arg):
			if name, value, ok := strings.Cut(arg, "="); ok {
				out[i] = name + "=" + mask(value)
			} else {
				out[i] = arg
				maskNext = true
			}
		default:
			out[i] = arg
		}
	}
	return out
}

func isSecretFlag(arg string) bool {
	name, _, _ := strings.Cut(strings.ToLower(strings.TrimLeft(arg, "-")), "=")
	for _, marker := range secretMarkers {
		if name == marker || strings.HasSuffix(name, "-"+marker) || strings.HasSuffix(name, "_"+marker) {
			return true
		}
	}
	return false
}

func mask(value string) string {
	if len(value) <= 4 {
		return "***"
	}
	return value[:3] + "***"
}
