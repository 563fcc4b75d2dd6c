package workers

import "context"

// Poster accepts functions to run on another execution context
type Poster interface {
	Post(fn func()) bool
}

// Future is the pending result of a submitted task
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(v T, err error) {
	f.value = v
	f.err = err
	close(f.done)
}

// Done is closed once the result is available
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the task finished or ctx is done
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// ApplyOn posts apply with the task result onto p once the task finished.
// The result is dropped if p no longer accepts work.
func (f *Future[T]) ApplyOn(p Poster, apply func(T, error)) {
	go func() {
		<-f.done
		p.Post(func() { apply(f.value, f.err) })
	}()
}
