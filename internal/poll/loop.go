// Package poll runs a cancellable fixed-interval callback.
//
// A Loop owns at most one background goroutine. Reset replaces whatever
// schedule is running, and Stop waits for the goroutine to exit, so once Stop
// returns the callback will not fire again. The callback runs on the loop's
// goroutine and must not call Reset or Stop itself; hand work off to another
// goroutine (for example tea.Program.Send) instead.
//
// Every Reset and Stop starts a new generation, and each callback receives
// the generation of the schedule that fired it. A consumer that receives
// ticks asynchronously compares it with Generation to drop ticks from a
// schedule that has since been replaced.
package poll

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is used when New receives a non-positive interval.
const DefaultInterval = 3 * time.Second

// Loop calls fn every interval while active.
type Loop struct {
	interval time.Duration
	fn       func(gen uint64)

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns an idle Loop.
func New(interval time.Duration, fn func(gen uint64)) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{interval: interval, fn: fn}
}

// Reset stops any running schedule and, when active is true, starts a fresh
// one whose first tick is one interval from now.
func (l *Loop) Reset(active bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stopLocked()
	if !active || l.fn == nil {
		return
	}

	gen := l.gen
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	l.cancel = cancel
	l.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if ctx.Err() != nil {
				return
			}
			l.fn(gen)
		}
	}()
}

// Stop cancels the schedule and waits for the goroutine to exit. It is safe
// to call on an idle Loop and more than once.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
}

// Active reports whether a schedule is running.
func (l *Loop) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}

// Generation returns the current schedule generation.
func (l *Loop) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen
}

func (l *Loop) stopLocked() {
	l.gen++
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
	l.cancel = nil
	l.done = nil
}
