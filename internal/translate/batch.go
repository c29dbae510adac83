// ABOUTME: Batch runner: translates many files with bounded concurrency
// ABOUTME: Job failures are collected into one BatchError and listed in errors.log
package translate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harper/mdtranslate/internal/pool"
)

// ErrorsFile lists the sources of failed jobs, one per line
const ErrorsFile = "errors.log"

// BatchResult collects the outcome of a run
type BatchResult struct {
	Results []FileResult
	Errors  []*JobError
}

// RunBatch translates jobs with at most concurrency files in flight.
// It returns a *BatchError when any job failed.
func (r *Runner) RunBatch(ctx context.Context, jobs []Job, concurrency int, hooks pool.Hooks) (BatchResult, error) {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}

	outcome := pool.Run(ctx, jobs, concurrency, func(ctx context.Context, _ int, job Job) (FileResult, error) {
		return r.TranslateFile(ctx, job)
	}, hooks)

	var batch BatchResult
	for _, o := range outcome.Results {
		if o.OK() {
			batch.Results = append(batch.Results, o.Value)
		}
	}
	for _, itemErr := range outcome.Errors {
		var jobErr *JobError
		if !errors.As(itemErr.Err, &jobErr) {
			jobErr = &JobError{Job: itemErr.Item, Err: itemErr.Err}
		}
		batch.Errors = append(batch.Errors, jobErr)
	}

	if len(batch.Errors) == 0 {
		return batch, nil
	}
	return batch, &BatchError{Errors: batch.Errors, Total: len(jobs)}
}

// ReportErrors writes the failed sources of batchErr to dir/errors.log.
// The file can be fed back with --list to retry only the failures.
func ReportErrors(dir string, batchErr *BatchError) (string, error) {
	if batchErr == nil || len(batchErr.Errors) == 0 {
		return "", nil
	}

	var b strings.Builder
	for _, e := range batchErr.Errors {
		b.WriteString(e.Job.Source)
		b.WriteByte('\n')
	}

	path := filepath.Join(dir, ErrorsFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating session directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing error report: %w", err)
	}
	batchErr.Report = path
	return path, nil
}
