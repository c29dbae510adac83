// ABOUTME: Explicit application lifecycle: init -> run -> shutdown as injected hooks
// ABOUTME: Resources registered during a run are released in LIFO order on every exit path
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Cleanup is a LIFO stack of release functions
type Cleanup struct {
	mu    sync.Mutex
	names []string
	fns   []func() error
}

// Push registers fn to run on release; the last pushed runs first
func (c *Cleanup) Push(name string, fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = append(c.names, name)
	c.fns = append(c.fns, fn)
}

// Release runs every registered function, newest first, and empties the stack
func (c *Cleanup) Release() error {
	c.mu.Lock()
	names, fns := c.names, c.fns
	c.names, c.fns = nil, nil
	c.mu.Unlock()

	var errs []error
	for i := len(fns) - 1; i >= 0; i-- {
		if err := fns[i](); err != nil {
			errs = append(errs, fmt.Errorf("releasing %s: %w", names[i], err))
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of pending release functions
func (c *Cleanup) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fns)
}

// Hooks are the phases of one application run. Nil hooks are skipped.
type Hooks struct {
	Init     func(ctx context.Context, cleanup *Cleanup) error
	Run      func(ctx context.Context) error
	Shutdown func(ctx context.Context, runErr error) error
}

// Run executes init, run and shutdown in order. Run is skipped when init fails;
// shutdown always sees the error that ended the run, and cleanup always happens last.
func Run(ctx context.Context, hooks Hooks) error {
	cleanup := &Cleanup{}

	var runErr error
	if hooks.Init != nil {
		if err := hooks.Init(ctx, cleanup); err != nil {
			runErr = fmt.Errorf("init: %w", err)
		}
	}
	if runErr == nil && hooks.Run != nil {
		runErr = hooks.Run(ctx)
	}

	var shutdownErr error
	if hooks.Shutdown != nil {
		if err := hooks.Shutdown(ctx, runErr); err != nil {
			shutdownErr = fmt.Errorf("shutdown: %w", err)
		}
	}

	return errors.Join(runErr, shutdownErr, cleanup.Release())
}
