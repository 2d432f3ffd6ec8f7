package command

import (
	"context"
	"sync"
)

// Future is the single-resolution result of a submitted command. A
// future resolves exactly once; later resolutions are no-ops.
type Future struct {
	once sync.Once
	done chan struct{}
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// resolved returns a future that already carries the given result.
func resolved(err error) *Future {
	f := newFuture()
	f.resolve(err)
	return f
}

func (f *Future) resolve(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done returns a channel closed when the command has finished.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the command finishes or the context is cancelled and
// returns the command's error.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
