// ABOUTME: Job model: one source document translated into one destination
// ABOUTME: Destinations default to name.<language>.ext next to the source
package translate

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Job is one document-level unit of work
type Job struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Language    string `json:"language"`
	Log         string `json:"log,omitempty"`
}

// NewJob creates a job with a fresh id
func NewJob(source, destination, language string) Job {
	return Job{
		ID:          uuid.New().String(),
		Source:      source,
		Destination: destination,
		Language:    language,
	}
}

// SuggestDestination derives the output path: docs/a.md -> docs/a.<language>.md unless overwriting
func SuggestDestination(source, language string, overwrite bool) string {
	if overwrite {
		return source
	}
	ext := filepath.Ext(source)
	return strings.TrimSuffix(source, ext) + "." + strings.ToLower(language) + ext
}

// ComposeJobs resolves files against cwd and creates one job per file
func ComposeJobs(files []string, cwd, language string, overwrite bool) []Job {
	jobs := make([]Job, 0, len(files))
	for _, file := range files {
		source := file
		if !filepath.IsAbs(source) {
			source = filepath.Join(cwd, file)
		}
		jobs = append(jobs, NewJob(source, SuggestDestination(source, language, overwrite), language))
	}
	return jobs
}
