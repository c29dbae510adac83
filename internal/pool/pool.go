// ABOUTME: Generic bounded-concurrency executor with positional fan-in
// ABOUTME: Runs one operation per item, never fails fast, reports progress on start and finish
package pool

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Progress is a snapshot of the executor counters
type Progress struct {
	Active    int
	Processed int
	Total     int
	Errors    int
}

// Percentage returns processed/total in percent
func (p Progress) Percentage() float64 {
	if p.Total == 0 {
		return 100
	}
	return float64(p.Processed) * 100 / float64(p.Total)
}

// Done reports whether every item has settled
func (p Progress) Done() bool {
	return p.Processed == p.Total
}

// Hooks receive progress notifications. Calls are synchronous and never concurrent.
// A panicking hook is dropped for that notification and the run carries on.
type Hooks struct {
	OnTaskStarted  func(Progress)
	OnTaskFinished func(Progress)
}

// Outcome is the result slot of one item: a value on success or the error that replaced it
type Outcome[R any] struct {
	Value R
	Err   error
}

// OK reports whether the item succeeded
func (o Outcome[R]) OK() bool {
	return o.Err == nil
}

// ItemError ties a failure to the item that produced it
type ItemError[T any] struct {
	Index int
	Item  T
	Err   error
}

func (e *ItemError[T]) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError[T]) Unwrap() error {
	return e.Err
}

// Result holds outcomes aligned with the input items plus the failures in completion order
type Result[T, R any] struct {
	Results []Outcome[R]
	Errors  []*ItemError[T]
}

// Failed returns the number of failed items
func (r Result[T, R]) Failed() int {
	return len(r.Errors)
}

// Op processes one item. index is the position of item in the input slice.
type Op[T, R any] func(ctx context.Context, index int, item T) (R, error)

// Run executes op for every item with at most concurrency operations in flight.
// It returns once every item has produced a value or an error; Results[i] always belongs to items[i].
func Run[T, R any](ctx context.Context, items []T, concurrency int, op Op[T, R], hooks Hooks) Result[T, R] {
	if concurrency < 1 {
		concurrency = 1
	}

	result := Result[T, R]{Results: make([]Outcome[R], len(items))}
	progress := Progress{Total: len(items)}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, item := range items {
		g.Go(func() error {
			mu.Lock()
			progress.Active++
			notify(hooks.OnTaskStarted, progress)
			mu.Unlock()

			value, err := call(ctx, op, i, item)

			mu.Lock()
			defer mu.Unlock()
			progress.Active--
			progress.Processed++
			result.Results[i] = Outcome[R]{Value: value, Err: err}
			if err != nil {
				progress.Errors++
				result.Errors = append(result.Errors, &ItemError[T]{Index: i, Item: item, Err: err})
			}
			notify(hooks.OnTaskFinished, progress)
			return nil
		})
	}

	_ = g.Wait()
	return result
}

func call[T, R any](ctx context.Context, op Op[T, R], index int, item T) (value R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return op(ctx, index, item)
}

func notify(fn func(Progress), p Progress) {
	if fn == nil {
		return
	}
	defer func() { _ = recover() }()
	fn(p)
}
