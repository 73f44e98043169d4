// Package loop provides the cooperative event loop every piece of animation state
// is mutated on. Timers, render frames and detection results are all posted onto a
// single goroutine, so state owned by the loop never needs locking.
package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-lotus/internal/log"
)

// Scheduler is the time source and one-shot timer facility used by the breath clock.
type Scheduler interface {
	// Now returns monotonic time since the scheduler's epoch.
	Now() time.Duration

	// AfterFunc runs f once, d from now, on the scheduler's execution context.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellation token for a scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call prevented f from running.
	Stop() bool
}

// Loop serialises callbacks onto one goroutine.
type Loop struct {
	epoch  time.Time
	events chan func()

	mu      sync.Mutex
	running bool
	done    chan struct{}

	dropped atomic.Uint64
}

// New creates a loop with the given event queue size.
func New(queue int) *Loop {
	if queue <= 0 {
		queue = 256
	}
	return &Loop{
		epoch:  time.Now(),
		events: make(chan func(), queue),
		done:   make(chan struct{}),
	}
}

// Now returns time elapsed since the loop was created.
func (l *Loop) Now() time.Duration {
	return time.Since(l.epoch)
}

// Run executes posted callbacks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return ErrRunning
	}
	l.running = true
	l.mu.Unlock()

	defer close(l.done)

	log.Debug("event loop started", "queue", cap(l.events))

	for {
		select {
		case <-ctx.Done():
			log.Debug("event loop stopped", "dropped", l.dropped.Load())
			return ctx.Err()
		case f := <-l.events:
			f()
		}
	}
}

// Post queues f for execution on the loop. It reports false when the loop has
// stopped or the queue is full; use it for best-effort work that a later post
// supersedes.
func (l *Loop) Post(f func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.events <- f:
		return true
	default:
		if l.dropped.Add(1)%100 == 1 {
			log.Warn("event loop queue full, dropping event", "dropped", l.dropped.Load())
		}
		return false
	}
}

// Call runs f on the loop and waits for it to finish.
func (l *Loop) Call(ctx context.Context, f func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		f()
	}

	select {
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	case l.events <- wrapped:
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// AfterFunc schedules f on the loop after d. Unlike Post, the callback is never
// dropped: the timer goroutine waits for queue space until the loop stops.
// Stopping the returned timer from the loop guarantees f will not run, even if
// the timer already fired and f is queued.
func (l *Loop) AfterFunc(d time.Duration, f func()) Timer {
	tok := &token{}
	tok.timer = time.AfterFunc(d, func() {
		l.send(func() {
			if tok.fire() {
				f()
			}
		})
	})
	return tok
}

// send queues f, blocking while the queue is full. It gives up once the loop
// has stopped.
func (l *Loop) send(f func()) {
	select {
	case l.events <- f:
	case <-l.done:
	}
}

// token implements Timer for AfterFunc.
type token struct {
	timer     *time.Timer
	cancelled atomic.Bool
	fired     atomic.Bool
}

func (t *token) Stop() bool {
	if t.cancelled.Swap(true) {
		return false
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	return !t.fired.Load()
}

// fire marks a one-shot token as run, reporting false when it was cancelled first.
func (t *token) fire() bool {
	if t.cancelled.Load() {
		return false
	}
	t.fired.Store(true)
	return true
}
