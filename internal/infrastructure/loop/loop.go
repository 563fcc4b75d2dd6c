// Package loop provides the single-threaded interaction context of the host.
//
// Every bridge call and every user-visible effect (script delivery, transient
// messages, notifications) executes on the loop goroutine, in posting order.
// Blocking work never runs here; it is submitted to the worker pool and its
// result posted back.
//
// Example Usage:
//
//	l := loop.New(logger)
//	go l.Run(ctx)
//
//	l.Post(func() { gate.Open() })
//	err := l.Call(ctx, func() error { return surface.Evaluate(ctx, script) })
package loop

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrClosed is returned when posting to a stopped loop
var ErrClosed = errors.New("interaction loop closed")

// Loop executes posted functions one at a time on a single goroutine
type Loop struct {
	mu     sync.Mutex
	queue  []func() // Protected by mu
	closed bool     // Protected by mu

	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	logger  *zap.Logger
}

// New creates a loop. Run must be called to start processing.
func New(logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		logger:  logger,
	}
}

// Post enqueues fn. It never blocks and reports false once the loop is closed.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Call posts fn and waits for its result.
// Must not be called from the loop goroutine itself.
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	if !l.Post(func() { result <- fn() }) {
		return ErrClosed
	}

	select {
	case err := <-result:
		return err
	case <-l.stopped:
		// the loop may have run fn just before stopping
		select {
		case err := <-result:
			return err
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes posted functions until ctx is cancelled or Close is called.
// Functions still queued at shutdown are executed before Run returns.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.stopped)

	for {
		select {
		case <-ctx.Done():
			l.shutdown()
			return
		case <-l.done:
			l.drain()
			return
		case <-l.wake:
			l.drain()
		}
	}
}

// Close stops the loop after the queued functions ran
func (l *Loop) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()
		close(l.done)
	})
}

// Stopped is closed when Run has returned
func (l *Loop) Stopped() <-chan struct{} {
	return l.stopped
}

func (l *Loop) shutdown() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()
		close(l.done)
	})
	l.drain()
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			l.execute(fn)
		}
	}
}

func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Interaction loop task panicked", zap.Error(fmt.Errorf("%v", r)))
		}
	}()
	fn()
}
