// ABOUTME: File runner: read, split, translate chunks concurrently, merge and write one document
// ABOUTME: The merged document is logged even when the job fails
package translate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/harper/mdtranslate/internal/chunker"
	"github.com/harper/mdtranslate/internal/document"
	"github.com/harper/mdtranslate/internal/joblog"
	"github.com/harper/mdtranslate/internal/logging"
	"github.com/harper/mdtranslate/internal/pool"
)

// DefaultConcurrency bounds both files and chunks in flight
const DefaultConcurrency = 5

// Runner translates files; one Runner serves a whole session
type Runner struct {
	Translator       Translator
	Model            string
	Options          document.Options
	ChunkConcurrency int
	Policy           Policy
	Metrics          Metrics
	Logger           *log.Logger
	// SessionDir receives one <job id>.log per job
	SessionDir string
	// ChunkHooks, when set, supplies progress hooks for the chunks of each job
	ChunkHooks func(job Job) pool.Hooks
}

// FileResult describes one translated document
type FileResult struct {
	Job        Job
	Chunks     chunker.Content
	Translated string
	Failed     int
	Written    bool
}

func (r *Runner) metrics() Metrics {
	if r.Metrics == nil {
		return Discard
	}
	return r.Metrics
}

// TranslateFile runs one job. Every returned error is a *JobError.
func (r *Runner) TranslateFile(ctx context.Context, job Job) (FileResult, error) {
	result := FileResult{Job: job}
	logger := logging.Or(r.Logger).With("job", job.ID, "source", job.Source)
	fail := func(err error) (FileResult, error) {
		return result, &JobError{Job: result.Job, Err: err}
	}

	strategy, err := document.ForFile(job.Source, r.Options)
	if err != nil {
		return fail(err)
	}

	data, err := os.ReadFile(job.Source)
	if err != nil {
		return fail(fmt.Errorf("reading source: %w", err))
	}
	r.metrics().Increment(KpiRead, float64(len(data)))

	doc := document.Document{
		Source:      job.Source,
		Destination: job.Destination,
		Language:    job.Language,
		Content:     string(data),
	}
	prompt, err := strategy.ComposePrompt(doc)
	if err != nil {
		return fail(err)
	}

	jlog, err := joblog.Create(filepath.Join(r.SessionDir, job.ID+".log"))
	if err != nil {
		return fail(err)
	}
	defer jlog.Close()
	result.Job.Log = jlog.Path()

	result.Chunks = strategy.ComposeChunks(doc)
	logger.Debug("chunks composed", "chunks", len(result.Chunks.Chunks), "tokens", result.Chunks.Tokens, "bytes", result.Chunks.Length)

	task := &Task{
		Job:        result.Job,
		Model:      r.Model,
		Prompt:     prompt,
		Translator: r.Translator,
		Log:        jlog,
		Metrics:    r.metrics(),
		Logger:     logger,
	}
	var hooks pool.Hooks
	if r.ChunkHooks != nil {
		hooks = r.ChunkHooks(result.Job)
	}

	concurrency := r.ChunkConcurrency
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	outcome := pool.Run(ctx, result.Chunks.Chunks, concurrency, func(ctx context.Context, i int, chunk string) (string, error) {
		return task.TranslateChunk(ctx, i, chunk)
	}, hooks)
	r.metrics().Increment(KpiFiles, 1)

	total := len(result.Chunks.Chunks)
	result.Failed = outcome.Failed()
	result.Translated = strategy.MergeResults(Reconcile(outcome.Results, result.Chunks.Chunks))
	if err := jlog.Merged(result.Translated, result.Failed, total); err != nil {
		logger.Warn("job log", "err", err)
	}

	if r.Policy.Failed(result.Failed, total) {
		causes := make([]error, 0, len(outcome.Errors)+1)
		causes = append(causes, fmt.Errorf("%w: %d of %d chunks failed (log: %s)", ErrFailed, result.Failed, total, jlog.Path()))
		for _, itemErr := range outcome.Errors {
			causes = append(causes, itemErr.Err)
		}
		return fail(errors.Join(causes...))
	}
	if result.Failed > 0 {
		logger.Warn("chunks kept in source language", "failed", result.Failed, "total", total, "log", jlog.Path())
	}

	translated := []byte(result.Translated)
	existing, err := os.ReadFile(job.Destination)
	switch {
	case err == nil && bytes.Equal(existing, translated):
		return fail(ErrSameContent)
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return fail(fmt.Errorf("reading destination: %w", err))
	}

	if err := os.MkdirAll(filepath.Dir(job.Destination), 0o755); err != nil {
		return fail(fmt.Errorf("creating destination directory: %w", err))
	}
	if err := os.WriteFile(job.Destination, translated, 0o644); err != nil {
		return fail(fmt.Errorf("writing destination: %w", err))
	}
	r.metrics().Increment(KpiWritten, float64(len(translated)))
	result.Written = true

	logger.Info("translated", "destination", job.Destination, "chunks", total)
	return result, nil
}
