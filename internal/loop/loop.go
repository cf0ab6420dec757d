// Package loop provides a single-goroutine event loop. Every closure posted
// to a Loop runs on the goroutine that called Run, one at a time, so state
// owned by the loop needs no locking.
package loop

import (
	"context"
	"sync"
)

// Poster schedules fn to run on an event loop. Implementations must be safe
// to call from any goroutine other than the loop itself.
type Poster interface {
	Post(fn func())
}

// Func adapts a plain function to the Poster interface.
type Func func(fn func())

// Post implements Poster.
func (f Func) Post(fn func()) { f(fn) }

// Inline runs posted closures immediately on the caller's goroutine. It is
// only correct when every caller is already on the loop, as in tests.
var Inline Poster = Func(func(fn func()) { fn() })

// Loop is a closure queue drained by Run.
type Loop struct {
	queue    chan func()
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a Loop whose queue holds up to size pending closures before
// Post blocks.
func New(size int) *Loop {
	if size <= 0 {
		size = 64
	}
	return &Loop{
		queue: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Post queues fn. It blocks while the queue is full and drops fn once the
// loop has stopped.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// Run drains the queue until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.queue:
			fn()
		}
	}
}

// Stop ends Run. Closures still queued are discarded.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Call runs fn on the loop and waits for it to finish. It must not be
// called from the loop goroutine. It returns false if the loop stopped
// before fn ran.
func (l *Loop) Call(fn func()) bool {
	ran := make(chan struct{})
	l.Post(func() {
		fn()
		close(ran)
	})
	select {
	case <-ran:
		return true
	case <-l.done:
		return false
	}
}
