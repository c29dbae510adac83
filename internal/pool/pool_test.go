// ABOUTME: Tests for the bounded-concurrency executor
// ABOUTME: Verifies ordering, concurrency limits, partial failures and progress events

package pool

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRun_PositionalAlignment(t *testing.T) {
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	result := Run(context.Background(), items, 8, func(_ context.Context, _ int, item int) (string, error) {
		time.Sleep(time.Duration(rand.IntN(5)) * time.Millisecond)
		return fmt.Sprintf("item-%d", item), nil
	}, Hooks{})

	if len(result.Results) != len(items) {
		t.Fatalf("Results = %d, want %d", len(result.Results), len(items))
	}
	for i, outcome := range result.Results {
		if want := fmt.Sprintf("item-%d", i); outcome.Value != want {
			t.Errorf("Results[%d] = %q, want %q", i, outcome.Value, want)
		}
	}
}

func TestRun_RespectsConcurrencyLimit(t *testing.T) {
	const limit = 3
	var inFlight, peak int32

	items := make([]int, 20)
	Run(context.Background(), items, limit, func(_ context.Context, _ int, _ int) (int, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return 0, nil
	}, Hooks{})

	if peak > limit {
		t.Errorf("peak concurrency = %d, want <= %d", peak, limit)
	}
	if peak == 0 {
		t.Error("operation never ran")
	}
}

func TestRun_PartialFailureYield(t *testing.T) {
	errBoom := errors.New("boom")
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	result := Run(context.Background(), items, 4, func(_ context.Context, _ int, item int) (int, error) {
		if item%3 == 0 {
			return 0, errBoom
		}
		return item * 10, nil
	}, Hooks{})

	const wantFailed = 4 // 0, 3, 6, 9
	if result.Failed() != wantFailed {
		t.Errorf("Failed() = %d, want %d", result.Failed(), wantFailed)
	}

	successes := 0
	for i, outcome := range result.Results {
		if outcome.OK() {
			successes++
			if outcome.Value != i*10 {
				t.Errorf("Results[%d] = %d, want %d", i, outcome.Value, i*10)
			}
			continue
		}
		if !errors.Is(outcome.Err, errBoom) {
			t.Errorf("Results[%d].Err = %v, want errBoom", i, outcome.Err)
		}
	}
	if successes != len(items)-wantFailed {
		t.Errorf("successes = %d, want %d", successes, len(items)-wantFailed)
	}

	for _, itemErr := range result.Errors {
		if itemErr.Item != items[itemErr.Index] {
			t.Errorf("ItemError.Item = %d, want %d", itemErr.Item, items[itemErr.Index])
		}
		if !errors.Is(itemErr, errBoom) {
			t.Errorf("ItemError should unwrap to errBoom, got %v", itemErr)
		}
	}
}

func TestRun_ProgressEvents(t *testing.T) {
	var mu sync.Mutex
	var started, finished []Progress

	hooks := Hooks{
		OnTaskStarted: func(p Progress) {
			mu.Lock()
			defer mu.Unlock()
			started = append(started, p)
		},
		OnTaskFinished: func(p Progress) {
			mu.Lock()
			defer mu.Unlock()
			finished = append(finished, p)
		},
	}

	items := []string{"a", "b", "c", "d", "e"}
	Run(context.Background(), items, 2, func(_ context.Context, i int, _ string) (int, error) {
		if i == 1 {
			return 0, errors.New("fail")
		}
		return i, nil
	}, hooks)

	if len(started) != len(items) || len(finished) != len(items) {
		t.Fatalf("started = %d, finished = %d, want %d each", len(started), len(finished), len(items))
	}

	for i, p := range finished {
		if p.Processed != i+1 {
			t.Errorf("finished[%d].Processed = %d, want %d", i, p.Processed, i+1)
		}
		if p.Total != len(items) {
			t.Errorf("finished[%d].Total = %d, want %d", i, p.Total, len(items))
		}
		if p.Active < 0 || p.Active > 2 {
			t.Errorf("finished[%d].Active = %d, want 0..2", i, p.Active)
		}
	}

	last := finished[len(finished)-1]
	if !last.Done() {
		t.Error("last progress event should report Done()")
	}
	if last.Errors != 1 {
		t.Errorf("last.Errors = %d, want 1", last.Errors)
	}
	if last.Percentage() != 100 {
		t.Errorf("last.Percentage() = %v, want 100", last.Percentage())
	}
}

func TestRun_PanicBecomesItemError(t *testing.T) {
	result := Run(context.Background(), []int{1, 2}, 2, func(_ context.Context, _ int, item int) (int, error) {
		if item == 2 {
			panic("unexpected")
		}
		return item, nil
	}, Hooks{})

	if result.Failed() != 1 {
		t.Fatalf("Failed() = %d, want 1", result.Failed())
	}
	if result.Results[0].Value != 1 {
		t.Errorf("Results[0] = %d, want 1", result.Results[0].Value)
	}
	if result.Results[1].OK() {
		t.Error("Results[1] should carry the panic as an error")
	}
}

func TestRun_PanickingHooksDoNotStopTheRun(t *testing.T) {
	var finished atomic.Int32
	hooks := Hooks{
		OnTaskStarted: func(Progress) { panic("started hook") },
		OnTaskFinished: func(p Progress) {
			finished.Add(1)
			if p.Processed%2 == 0 {
				panic("finished hook")
			}
		},
	}

	items := []int{1, 2, 3, 4, 5}
	result := Run(context.Background(), items, 2, func(_ context.Context, _ int, item int) (int, error) {
		return item * 10, nil
	}, hooks)

	if result.Failed() != 0 {
		t.Errorf("Failed() = %d, want 0", result.Failed())
	}
	for i, out := range result.Results {
		if out.Value != items[i]*10 {
			t.Errorf("Results[%d] = %d, want %d", i, out.Value, items[i]*10)
		}
	}
	if got := finished.Load(); got != int32(len(items)) {
		t.Errorf("OnTaskFinished calls = %d, want %d", got, len(items))
	}
}

func TestRun_EmptyInput(t *testing.T) {
	calls := 0
	result := Run(context.Background(), []int{}, 0, func(_ context.Context, _ int, _ int) (int, error) {
		calls++
		return 0, nil
	}, Hooks{})

	if calls != 0 || len(result.Results) != 0 || result.Failed() != 0 {
		t.Errorf("empty input: calls = %d, results = %d, failed = %d", calls, len(result.Results), result.Failed())
	}
}
