// Runs independent pieces of work side by side and joins their results.
package concurrent

import (
	"golang.org/x/sync/errgroup"
)

// The eventual result of a function started with Go.
//
// Each future has its own result slot so goroutines never share state. Read
// the result only after the errgroup's Wait() has returned.
type Future[T any] struct {
	result chan T
	value  T
	done   bool
}

// Starts f in the errgroup and returns a future for its result.
//
// If f fails, its error is reported by g.Wait() and the future never resolves.
func Go[T any](g *errgroup.Group, f func() (T, error)) *Future[T] {
	future := &Future[T]{result: make(chan T, 1)}

	g.Go(func() error {
		v, err := f()
		if err != nil {
			return err
		}

		future.result <- v
		return nil
	})

	return future
}

// Returns the result and true if the function finished successfully, or the
// zero value and false otherwise. Never blocks.
func (f *Future[T]) Get() (T, bool) {
	if f.done {
		return f.value, true
	}

	select {
	case v := <-f.result:
		f.value = v
		f.done = true
		return v, true
	default:
		var zero T
		return zero, false
	}
}
