// ABOUTME: Error taxonomy of the translation pipeline
// ABOUTME: Chunk errors are recovered per job, job errors per batch, and the batch error ends the run
package translate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harper/mdtranslate/internal/document"
	"github.com/harper/mdtranslate/internal/llm"
)

var (
	// ErrUnsupported means no strategy handles the source file type
	ErrUnsupported = document.ErrUnsupported
	// ErrEmptyContent means the translator replied with no text
	ErrEmptyContent = errors.New("translation result was empty")
	// ErrTranslatorPanic means the translator panicked during a call
	ErrTranslatorPanic = errors.New("translator panicked")
	// ErrAPI matches failures reported by the translation service
	ErrAPI = llm.ErrAPI
	// ErrSameContent means the destination already holds the translated text
	ErrSameContent = errors.New("translation result is the same as the existing destination")
	// ErrFailed means too many chunks of a job failed
	ErrFailed = errors.New("translation failed")
)

// ChunkError is the failure of one chunk, pointing at the job log holding its details
type ChunkError struct {
	Index int
	Log   string
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d: %v (log: %s)", e.Index, e.Err, e.Log)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// JobError is the failure of one document
type JobError struct {
	Job Job
	Err error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("%s -> %s: %v", e.Job.Source, e.Job.Destination, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

// BatchError aggregates every job failure of a run
type BatchError struct {
	Errors []*JobError
	Total  int
	Report string // errors.log path, once written
}

func (e *BatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d files failed", len(e.Errors), e.Total)
	if e.Report != "" {
		fmt.Fprintf(&b, ", see %s", e.Report)
	}
	return b.String()
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, je := range e.Errors {
		errs[i] = je
	}
	return errs
}

// Class is the coarse category of a pipeline error
type Class string

const (
	ClassUnsupported Class = "unsupported"
	ClassSame        Class = "same-content"
	ClassFailed      Class = "failed"
	ClassEmpty       Class = "empty-content"
	ClassAPI         Class = "api"
	ClassUnknown     Class = "unknown"
)

// Classify returns the category of err; job-level classes take precedence over chunk-level ones
func Classify(err error) Class {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupported):
		return ClassUnsupported
	case errors.Is(err, ErrSameContent):
		return ClassSame
	case errors.Is(err, ErrFailed):
		return ClassFailed
	case errors.Is(err, ErrEmptyContent):
		return ClassEmpty
	case errors.Is(err, ErrAPI):
		return ClassAPI
	default:
		return ClassUnknown
	}
}
