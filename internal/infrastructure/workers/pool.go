package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrPoolClosed = errors.New("worker pool is closed")
	ErrTaskPanic  = errors.New("worker task panicked")
	ErrQueueFull  = errors.New("worker queue is full")
)

const (
	DefaultSize      = 2
	DefaultQueueSize = 64
)

// Observer receives the outcome of every finished task
type Observer func(name string, elapsed time.Duration, err error)

type job struct {
	name string
	run  func(ctx context.Context) error
}

// Pool executes submitted tasks on a fixed set of goroutines
type Pool struct {
	jobs     chan job
	size     int
	mu       sync.RWMutex
	closed   bool
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.Logger
	observer Observer
}

// NewPool starts size workers reading from a queue of queueSize pending tasks
func NewPool(size, queueSize int, logger *zap.Logger) *Pool {
	if size <= 0 {
		size = DefaultSize
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		jobs:   make(chan job, queueSize),
		size:   size,
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker(i)
	}

	return p
}

// Observe installs a task observer. Must be called before the first Submit.
func (p *Pool) Observe(fn Observer) {
	p.observer = fn
}

// Size returns the number of workers
func (p *Pool) Size() int {
	return p.size
}

// Close stops accepting tasks and waits for queued and in-flight tasks to finish
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}

func (p *Pool) enqueue(ctx context.Context, j job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.jobs <- j:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) tryEnqueue(j job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.jobs <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *Pool) worker(n int) {
	defer p.wg.Done()

	for j := range p.jobs {
		start := time.Now()
		err := j.run(p.ctx)
		elapsed := time.Since(start)

		if p.observer != nil {
			p.observer(j.name, elapsed, err)
		}
		if errors.Is(err, ErrTaskPanic) {
			p.logger.Error("Worker task panicked",
				zap.Int("worker", n),
				zap.String("task", j.name),
				zap.Error(err))
		}
	}
}

// Submit queues fn on the pool and returns its future.
// ctx bounds only the wait for a queue slot; a queued task always runs.
func Submit[T any](ctx context.Context, p *Pool, name string, fn func(ctx context.Context) (T, error)) (*Future[T], error) {
	f := newFuture[T]()

	err := p.enqueue(ctx, job{
		name: name,
		run: func(wctx context.Context) error {
			v, err := guard(wctx, name, fn)
			f.resolve(v, err)
			return err
		},
	})
	if err != nil {
		return nil, err
	}

	return f, nil
}

// TrySubmit is Submit without waiting: a full queue fails with ErrQueueFull.
// Safe to call from the interaction loop.
func TrySubmit[T any](p *Pool, name string, fn func(ctx context.Context) (T, error)) (*Future[T], error) {
	f := newFuture[T]()

	err := p.tryEnqueue(job{
		name: name,
		run: func(wctx context.Context) error {
			v, err := guard(wctx, name, fn)
			f.resolve(v, err)
			return err
		},
	})
	if err != nil {
		return nil, err
	}

	return f, nil
}

func guard[T any](ctx context.Context, name string, fn func(ctx context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v = zero
			err = fmt.Errorf("%w: %s: %v", ErrTaskPanic, name, r)
		}
	}()
	return fn(ctx)
}
