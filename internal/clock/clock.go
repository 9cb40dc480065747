// Package clock provides the cancellable timers that drive session
// countdowns. Production code uses Real; tests use Fake to step time
// deterministically.
package clock

import (
	"sync"
	"time"
)

// Handle cancels a scheduled callback. Cancel is idempotent.
type Handle interface {
	Cancel()
}

// Scheduler issues one-shot delays and periodic ticks.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time

	// After runs fn once, d from now, unless cancelled first.
	After(d time.Duration, fn func()) Handle

	// Every runs fn every interval until cancelled.
	Every(interval time.Duration, fn func()) Handle
}

// Real is a Scheduler backed by the runtime timers. Callbacks run on
// their own goroutines.
type Real struct{}

var _ Scheduler = Real{}

func (Real) Now() time.Time { return time.Now() }

func (Real) After(d time.Duration, fn func()) Handle {
	return &afterHandle{timer: time.AfterFunc(d, fn)}
}

func (Real) Every(interval time.Duration, fn func()) Handle {
	h := &tickerHandle{stop: make(chan struct{})}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-h.stop:
				return
			case <-ticker.C:
				// A tick may race with Cancel; re-check before firing.
				select {
				case <-h.stop:
					return
				default:
				}
				fn()
			}
		}
	}()
	return h
}

type afterHandle struct {
	timer *time.Timer
}

func (h *afterHandle) Cancel() { h.timer.Stop() }

type tickerHandle struct {
	once sync.Once
	stop chan struct{}
}

func (h *tickerHandle) Cancel() {
	h.once.Do(func() { close(h.stop) })
}
