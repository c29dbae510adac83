// ABOUTME: Structured logger construction on top of charmbracelet/log
// ABOUTME: Maps the CLI verbosity flags to log levels and picks a text or logfmt encoder
package logging

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Prefix tags every line written by the application
const Prefix = "mdtranslate"

// Options configure a logger
type Options struct {
	Verbose bool
	Quiet   bool
	// Logfmt selects machine-readable output, used for session files
	Logfmt bool
}

// Level returns the level implied by the verbosity flags; quiet wins over verbose
func (o Options) Level() log.Level {
	switch {
	case o.Quiet:
		return log.ErrorLevel
	case o.Verbose:
		return log.DebugLevel
	default:
		return log.InfoLevel
	}
}

// New builds a logger writing to w
func New(w io.Writer, opts Options) *log.Logger {
	formatter := log.TextFormatter
	if opts.Logfmt {
		formatter = log.LogfmtFormatter
	}
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level(),
		Prefix:          Prefix,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       formatter,
	})
}

// Discard returns a logger that drops everything
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// Or returns l, or a discarding logger when l is nil
func Or(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
