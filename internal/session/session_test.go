// ABOUTME: Tests for session directories
// ABOUTME: Covers opening, exec log masking, stats over the recorded window and listing
package session

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/harper/mdtranslate/internal/stats"
	"github.com/harper/mdtranslate/internal/telemetry"
)

func counterClock() telemetry.Clock {
	var now int64
	return telemetry.ClockFunc(func() int64 { now += 100; return now })
}

func TestOpen_CreatesLayout(t *testing.T) {
	root := t.TempDir()

	s, err := Open(root, "abc", counterClock())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if s.Dir != filepath.Join(root, "abc") {
		t.Errorf("Dir = %q", s.Dir)
	}
	if _, err := os.Stat(s.Path(telemetry.FileName)); err != nil {
		t.Errorf("telemetry file missing: %v", err)
	}
}

func TestOpen_GeneratesID(t *testing.T) {
	s, err := Open(t.TempDir(), "", nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if len(s.ID) != len("20060102-150405-")+8 {
		t.Errorf("ID = %q, want timestamp-uuid form", s.ID)
	}
}

func TestOpen_ReopenKeepsEarlierEvents(t *testing.T) {
	root := t.TempDir()

	first, err := Open(root, "shared", nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	first.Recorder.Increment("calls", 1)
	first.Recorder.Increment("calls", 1)
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second, err := Open(root, "shared", nil)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	second.Recorder.Increment("calls", 1)
	if err := second.Close(); err != nil {
		t.Fatal(err)
	}

	events, err := telemetry.ReadFile(filepath.Join(root, "shared", telemetry.FileName))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3 across both runs", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp < events[i-1].Timestamp {
			t.Errorf("event %d at %d precedes event %d at %d", i, events[i].Timestamp, i-1, events[i-1].Timestamp)
		}
	}
	if second.Started < events[1].Timestamp {
		t.Errorf("second run started at %d, before the first run's last event %d", second.Started, events[1].Timestamp)
	}

	finals, err := ReadStats(root, "shared", stats.Schema{"calls": {Operation: stats.OpCounter}})
	if err != nil {
		t.Fatalf("ReadStats() error = %v", err)
	}
	if got := finals.Statistics["calls"].Value; got != 3 {
		t.Errorf("calls over the session = %v, want 3", got)
	}
}

func TestSession_Stats(t *testing.T) {
	s, err := Open(t.TempDir(), "run", counterClock())
	if err != nil {
		t.Fatal(err)
	}
	s.Recorder.Increment("calls", 1)
	s.Recorder.Increment("calls", 1)
	s.Recorder.Increment("bytes", 40)

	finals, err := s.Stats(stats.Schema{
		"calls": {Operation: stats.OpCounter},
		"bytes": {Operation: stats.OpSum},
	})
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if got := finals.Statistics["calls"].Value; got != 2 {
		t.Errorf("calls = %v, want 2", got)
	}
	if got := finals.Statistics["bytes"].Value; got != 40.0 {
		t.Errorf("bytes = %v, want 40", got)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	stored, err := ReadStats(filepath.Dir(s.Dir), "run", stats.Schema{"calls": {Operation: stats.OpCounter}})
	if err != nil {
		t.Fatalf("ReadStats() error = %v", err)
	}
	if got := stored.Statistics["calls"].Value; got != 2 {
		t.Errorf("stored calls = %v, want 2", got)
	}
}

func TestMaskArgs(t *testing.T) {
	got := MaskArgs([]string{"translate", "docs/**/*.md", "--token", "sk-1234567890", "--api-key=abcdef", "--max-tokens", "500", "--key=ab"})
	want := []string{"translate", "docs/**/*.md", "--token", "sk-***", "--api-key=abc***", "--max-tokens", "500", "--key=***"}
	if !slices.Equal(got, want) {
		t.Errorf("MaskArgs() = %v, want %v", got, want)
	}
}

func TestWriteExecLog(t *testing.T) {
	s, err := Open(t.TempDir(), "x", counterClock())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.WriteExecLog([]string{"mdtranslate", "--token=sk-secret-value"}); err != nil {
		t.Fatalf("WriteExecLog() error = %v", err)
	}
	data, err := os.ReadFile(s.Path(ExecLogFile))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "secret-value") {
		t.Errorf("exec log leaks secret: %q", data)
	}
}

func TestList(t *testing.T) {
	root := t.TempDir()
	for _, id := range []string{"old", "new"} {
		s, err := Open(root, id, counterClock())
		if err != nil {
			t.Fatal(err)
		}
		_ = s.Close()
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(filepath.Join(root, "old", telemetry.FileName), old, old); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}

	infos, err := List(root)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(infos) != 2 || infos[0].ID != "new" || infos[1].ID != "old" {
		t.Errorf("List() = %+v, want new then old", infos)
	}

	missing, err := List(filepath.Join(root, "nope"))
	if err != nil || missing != nil {
		t.Errorf("List(missing) = %v, %v", missing, err)
	}
}
