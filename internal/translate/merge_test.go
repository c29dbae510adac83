// ABOUTME: Tests for chunk reconciliation and the job failure policy
// ABOUTME: Failed chunks must fall back to their source text in place
package translate

import (
	"errors"
	"testing"

	"github.com/harper/mdtranslate/internal/pool"
)

func TestMerge_FallsBackToOriginal(t *testing.T) {
	originals := []string{"one", "two", "three"}
	outcomes := []pool.Outcome[string]{
		{Value: "eins"},
		{Err: errors.New("rate limited")},
		{Value: "drei"},
	}

	got := Merge(outcomes, originals, "\n\n")

	if want := "eins\n\ntwo\n\ndrei"; got != want {
		t.Errorf("Merge() = %q, want %q", got, want)
	}
}

func TestReconcile_MissingOutcomes(t *testing.T) {
	got := Reconcile(nil, []string{"a", "b"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Reconcile(nil) = %q, want originals", got)
	}
}

func TestPolicy_Failed(t *testing.T) {
	tests := []struct {
		name          string
		max           int
		failed, total int
		want          bool
	}{
		{"no failures", 0, 0, 3, false},
		{"any failure", 0, 1, 3, true},
		{"within tolerance", 2, 2, 5, false},
		{"above tolerance", 2, 3, 5, true},
		{"only total failure, partial", -1, 2, 3, false},
		{"only total failure, total", -1, 3, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Policy{MaxChunkFailures: tt.max}).Failed(tt.failed, tt.total); got != tt.want {
				t.Errorf("Failed(%d, %d) = %v, want %v", tt.failed, tt.total, got, tt.want)
			}
		})
	}
}
