package clock

import (
	"sync/atomic"
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFake_AfterFiresOnce(t *testing.T) {
	f := NewFake(epoch)
	fired := 0
	f.After(2*time.Second, func() { fired++ })

	f.Advance(time.Second)
	if fired != 0 {
		t.Fatalf("fired after 1s = %d, want 0", fired)
	}
	f.Advance(time.Second)
	if fired != 1 {
		t.Fatalf("fired after 2s = %d, want 1", fired)
	}
	f.Advance(10 * time.Second)
	if fired != 1 {
		t.Errorf("one-shot fired %d times", fired)
	}
	if f.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", f.Pending())
	}
}

func TestFake_EveryFiresPerInterval(t *testing.T) {
	f := NewFake(epoch)
	ticks := 0
	h := f.Every(time.Second, func() { ticks++ })

	f.Advance(3500 * time.Millisecond)
	if ticks != 3 {
		t.Fatalf("ticks = %d, want 3", ticks)
	}
	h.Cancel()
	h.Cancel()
	f.Advance(5 * time.Second)
	if ticks != 3 {
		t.Errorf("ticks after cancel = %d, want 3", ticks)
	}
}

func TestFake_CallbackSeesDeadlineTime(t *testing.T) {
	f := NewFake(epoch)
	var seen time.Time
	f.After(1500*time.Millisecond, func() { seen = f.Now() })
	f.Advance(5 * time.Second)

	if want := epoch.Add(1500 * time.Millisecond); !seen.Equal(want) {
		t.Errorf("Now() in callback = %v, want %v", seen, want)
	}
	if want := epoch.Add(5 * time.Second); !f.Now().Equal(want) {
		t.Errorf("Now() after Advance = %v, want %v", f.Now(), want)
	}
}

func TestFake_CallbackCanScheduleAndCancel(t *testing.T) {
	f := NewFake(epoch)
	var order []string

	var tick Handle
	tick = f.Every(time.Second, func() {
		order = append(order, "tick")
		tick.Cancel()
		f.After(time.Second, func() { order = append(order, "after") })
	})
	f.Advance(3 * time.Second)

	if len(order) != 2 || order[0] != "tick" || order[1] != "after" {
		t.Errorf("order = %v, want [tick after]", order)
	}
}

func TestFake_SameDeadlineFiresInScheduleOrder(t *testing.T) {
	f := NewFake(epoch)
	var order []int
	f.After(time.Second, func() { order = append(order, 1) })
	f.After(time.Second, func() { order = append(order, 2) })
	f.Advance(time.Second)

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v, want [1 2]", order)
	}
}

func TestReal_AfterAndCancel(t *testing.T) {
	var fired atomic.Int32
	done := make(chan struct{})
	Real{}.After(10*time.Millisecond, func() {
		fired.Add(1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("After callback never fired")
	}

	h := Real{}.After(time.Hour, func() { fired.Add(1) })
	h.Cancel()
	if fired.Load() != 1 {
		t.Errorf("fired = %d, want 1", fired.Load())
	}
}

func TestReal_EveryStopsOnCancel(t *testing.T) {
	var ticks atomic.Int32
	h := Real{}.Every(5*time.Millisecond, func() { ticks.Add(1) })

	deadline := time.Now().Add(2 * time.Second)
	for ticks.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Cancel()
	stopped := ticks.Load()
	time.Sleep(30 * time.Millisecond)

	// At most one in-flight tick may land after Cancel.
	if got := ticks.Load(); got > stopped+1 {
		t.Errorf("ticks kept firing after Cancel: %d -> %d", stopped, got)
	}
}
