// Package runtime provides the cooperative-scheduling primitives the relay
// core depends on (spec.md §5, §6): task spawning, sleep, timeout, and
// channel constructors. The core never assumes OS threads vs. a cooperative
// scheduler; this implementation happens to use goroutines and
// golang.org/x/sync/errgroup, but nothing above this package depends on
// that choice.
package runtime

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Runtime is the capability set the relay core uses to schedule work
// (spec.md §6 "Runtime interface").
type Runtime interface {
	// Spawn runs fn in a new task. The task is tracked so Wait can block
	// until every spawned task has returned, and so a cancelled ctx causes
	// fn to be asked to unwind (spec.md §5 "Cancellation and timeouts").
	Spawn(ctx context.Context, fn func(ctx context.Context) error)

	// Sleep pauses the calling task for d, or until ctx is cancelled.
	Sleep(ctx context.Context, d time.Duration) error

	// Timeout runs fn and returns its error, unless d elapses first, in
	// which case it returns context.DeadlineExceeded.
	Timeout(ctx context.Context, d time.Duration, fn func(ctx context.Context) error) error

	// Wait blocks until every task spawned through this Runtime has
	// returned, and returns the first non-nil error any of them returned.
	Wait() error
}

// New constructs a Runtime whose spawned tasks are tracked by an
// errgroup.Group bound to ctx: cancelling ctx (or any task returning a
// non-nil error) cancels every other task's context.
func New(ctx context.Context) (Runtime, context.Context) {
	group, groupCtx := errgroup.WithContext(ctx)
	return &runtime{group: group}, groupCtx
}

type runtime struct {
	group *errgroup.Group
}

func (r *runtime) Spawn(ctx context.Context, fn func(ctx context.Context) error) {
	r.group.Go(func() error {
		return fn(ctx)
	})
}

func (r *runtime) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *runtime) Timeout(ctx context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(timeoutCtx)
	}()

	select {
	case <-timeoutCtx.Done():
		if timeoutCtx.Err() == context.DeadlineExceeded {
			return context.DeadlineExceeded
		}
		return timeoutCtx.Err()
	case err := <-done:
		return err
	}
}

func (r *runtime) Wait() error {
	return r.group.Wait()
}
