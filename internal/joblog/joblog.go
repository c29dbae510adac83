// ABOUTME: Per-job forensic log recording every prompt, chunk, reply and error
// ABOUTME: Each entry is composed in full and written with one call, so entries never interleave
package joblog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const rule = "----\n"

// Log is an append-only text sink for one translation job
type Log struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	path   string
}

// New wraps w; path is only reported back to callers
func New(w io.Writer, path string) *Log {
	return &Log{w: w, path: path}
}

// Create opens path for appending, truncating any log left by an earlier run
func Create(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening job log: %w", err)
	}
	return &Log{w: f, closer: f, path: path}, nil
}

// Path returns the location of the log
func (l *Log) Path() string {
	return l.path
}

// Request records a call before it is made
func (l *Log) Request(index int, model, prompt, text string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s:\n", index, model)
	b.WriteString(rule)
	b.WriteString(prompt + "\n")
	b.WriteString(rule)
	b.WriteString(text + "\n")
	b.WriteString(rule)
	return l.write(b.String())
}

// Answer records the reply of a call
func (l *Log) Answer(index int, content string) error {
	return l.write(fmt.Sprintf("#%d Answer:\n\n%s\n%s", index, content, rule))
}

// Error records the serialized failure of a call
func (l *Log) Error(index int, cause error) error {
	return l.write(fmt.Sprintf("#%d Error:\n\n%s\n%s", index, Serialize(cause), rule))
}

// Merged records the reassembled document and how many chunks fell back to the source
func (l *Log) Merged(content string, failed, total int) error {
	return l.write(fmt.Sprintf("Merged (%d of %d chunks failed):\n\n%s\n%s", failed, total, content, rule))
}

// Close closes the underlying file, if any
func (l *Log) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Log) write(entry string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := io.WriteString(l.w, entry); err != nil {
		return fmt.Errorf("writing job log %s: %w", l.path, err)
	}
	return nil
}

type serialized struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Status  int      `json:"status,omitempty"`
	Chain   []string `json:"chain,omitempty"`
}

// Serialize renders err as indented JSON including its wrapped causes
func Serialize(err error) string {
	if err == nil {
		return "null"
	}

	s := serialized{Type: fmt.Sprintf("%T", err), Message: err.Error()}

	var status interface{ HTTPStatus() int }
	if errors.As(err, &status) {
		s.Status = status.HTTPStatus()
	}
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		s.Chain = append(s.Chain, fmt.Sprintf("%T: %v", cause, cause))
	}

	data, jerr := json.MarshalIndent(s, "", "  ")
	if jerr != nil {
		return fmt.Sprintf("%q", err.Error())
	}
	return string(data)
}
