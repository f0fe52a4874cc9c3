// Package mainloop serialises work onto a single goroutine.
//
// Anything that mutates playback state is posted here, whether it comes from
// key presses or from audio callbacks, so that state is only ever touched by
// one goroutine at a time.
package mainloop

import (
	"context"
	"sync"
)

// Loop is a FIFO of pending tasks. The owner drains it either with Run or,
// when another event loop is already in charge, by calling RunPending each
// time Wake fires.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
}

// New returns an empty Loop.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post queues fn. It never blocks and is safe from any goroutine.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Wake delivers a value whenever tasks may be pending.
func (l *Loop) Wake() <-chan struct{} {
	return l.wake
}

// RunPending runs every task queued so far, plus any they queue in turn,
// and reports how many ran.
func (l *Loop) RunPending() int {
	ran := 0
	for {
		l.mu.Lock()
		batch := l.pending
		l.pending = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			return ran
		}
		for _, fn := range batch {
			fn()
			ran++
		}
	}
}

// Run drains the loop until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunPending()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Do posts fn and waits until it has run on the loop.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
