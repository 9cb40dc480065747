package clock

import (
	"sync"
	"time"
)

// Fake is a manually driven Scheduler for tests. Callbacks run
// synchronously inside Advance, in deadline order, and may schedule or
// cancel other timers.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	pending map[uint64]*fakeTimer
}

var _ Scheduler = (*Fake)(nil)

type fakeTimer struct {
	id       uint64
	deadline time.Time
	interval time.Duration
	fn       func()
	fake     *Fake
}

// NewFake returns a Fake whose clock starts at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start, pending: make(map[uint64]*fakeTimer)}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) After(d time.Duration, fn func()) Handle {
	return f.schedule(d, 0, fn)
}

func (f *Fake) Every(interval time.Duration, fn func()) Handle {
	return f.schedule(interval, interval, fn)
}

func (f *Fake) schedule(d, interval time.Duration, fn func()) Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t := &fakeTimer{
		id:       f.seq,
		deadline: f.now.Add(d),
		interval: interval,
		fn:       fn,
		fake:     f,
	}
	f.pending[t.id] = t
	return t
}

func (t *fakeTimer) Cancel() {
	t.fake.mu.Lock()
	defer t.fake.mu.Unlock()
	delete(t.fake.pending, t.id)
}

// Advance moves the clock forward by d, firing every callback that falls
// due along the way.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	for {
		next := f.nextDue(target)
		if next == nil {
			break
		}
		f.now = next.deadline
		if next.interval > 0 {
			next.deadline = next.deadline.Add(next.interval)
		} else {
			delete(f.pending, next.id)
		}
		fn := next.fn
		f.mu.Unlock()
		fn()
		f.mu.Lock()
	}
	f.now = target
	f.mu.Unlock()
}

// Pending returns the number of live timers.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

func (f *Fake) nextDue(target time.Time) *fakeTimer {
	var best *fakeTimer
	for _, t := range f.pending {
		if t.deadline.After(target) {
			continue
		}
		if best == nil || t.deadline.Before(best.deadline) ||
			(t.deadline.Equal(best.deadline) && t.id < best.id) {
			best = t
		}
	}
	return best
}
