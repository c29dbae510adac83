// ABOUTME: Chunk translation task: one logged, measured call to the translator
// ABOUTME: The job log receives an entry before the call and another on every exit path, panics included
package translate

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/harper/mdtranslate/internal/joblog"
	"github.com/harper/mdtranslate/internal/logging"
)

// Translator turns text into its translation following prompt
type Translator interface {
	Translate(ctx context.Context, text, prompt string) (string, error)
}

// Task translates the chunks of one job
type Task struct {
	Job        Job
	Model      string
	Prompt     string
	Translator Translator
	Log        *joblog.Log
	Metrics    Metrics
	Logger     *log.Logger
}

// TranslateChunk translates the chunk at index. Failures come back as *ChunkError.
func (t *Task) TranslateChunk(ctx context.Context, index int, text string) (result string, err error) {
	metrics := t.Metrics
	if metrics == nil {
		metrics = Discard
	}
	logger := logging.Or(t.Logger)
	tag := fmt.Sprintf("%s#%d", t.Job.ID, index)

	if lerr := t.Log.Request(index, t.Model, t.Prompt, text); lerr != nil {
		logger.Warn("job log", "err", lerr)
	}

	metrics.Increment(KpiCalls, 1)
	metrics.Value(KpiOperations, 1)
	metrics.Duration(KpiResponseTime, tag)

	defer func() {
		if r := recover(); r != nil {
			result, err = "", fmt.Errorf("%w: %v", ErrTranslatorPanic, r)
		}
		metrics.Duration(KpiResponseTime, tag)
		if err == nil {
			if lerr := t.Log.Answer(index, result); lerr != nil {
				logger.Warn("job log", "err", lerr)
			}
			return
		}
		metrics.Increment(KpiErrors, 1)
		if lerr := t.Log.Error(index, err); lerr != nil {
			logger.Warn("job log", "err", lerr)
		}
		logger.Debug("chunk failed", "chunk", index, "class", Classify(err), "err", err)
		err = &ChunkError{Index: index, Log: t.Log.Path(), Err: err}
	}()

	result, err = t.Translator.Translate(ctx, text, t.Prompt)
	if err != nil {
		return "", err
	}
	if result == "" {
		return "", ErrEmptyContent
	}
	return result, nil
}
