// ABOUTME: Reconciliation of chunk outcomes into one document and the job failure policy
// ABOUTME: Failed chunks fall back to their source text so the partial document is always complete
package translate

import (
	"strings"

	"github.com/harper/mdtranslate/internal/pool"
)

// Policy decides whether chunk failures fail the whole job
type Policy struct {
	// MaxChunkFailures: 0 fails on any failure, N fails above N, negative fails only if every chunk failed
	MaxChunkFailures int
}

// Failed reports whether failed out of total chunks fails the job
func (p Policy) Failed(failed, total int) bool {
	if failed == 0 {
		return false
	}
	if p.MaxChunkFailures < 0 {
		return failed >= total
	}
	return failed > p.MaxChunkFailures
}

// Reconcile returns, per position, the translation or the original chunk when it failed
func Reconcile(outcomes []pool.Outcome[string], originals []string) []string {
	parts := make([]string, len(originals))
	for i, original := range originals {
		if i < len(outcomes) && outcomes[i].OK() {
			parts[i] = outcomes[i].Value
			continue
		}
		parts[i] = original
	}
	return parts
}

// Merge reconciles outcomes and joins them with separator
func Merge(outcomes []pool.Outcome[string], originals []string, separator string) string {
	return strings.Join(Reconcile(outcomes, originals), separator)
}
