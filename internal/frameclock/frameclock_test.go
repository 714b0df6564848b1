package frameclock

import (
	"sync"
	"testing"
	"time"
)

func TestMockClock_FiresOneFramePerAdvance(t *testing.T) {
	clock := NewMockClock(time.Unix(0, 0))

	var fired []time.Time
	clock.RequestFrame(func(now time.Time) {
		fired = append(fired, now)
	})

	clock.Advance(16 * time.Millisecond)
	if len(fired) != 1 {
		t.Fatalf("fired %d callbacks, want 1", len(fired))
	}
	if !fired[0].Equal(time.Unix(0, 0).Add(16 * time.Millisecond)) {
		t.Errorf("callback time = %v", fired[0])
	}

	// The request fired once; advancing again must not refire it.
	clock.Advance(16 * time.Millisecond)
	if len(fired) != 1 {
		t.Errorf("request refired, total %d", len(fired))
	}
}

func TestMockClock_RerequestWaitsForNextFrame(t *testing.T) {
	clock := NewMockClock(time.Unix(0, 0))

	ticks := 0
	var loop func(now time.Time)
	loop = func(now time.Time) {
		ticks++
		if ticks < 3 {
			clock.RequestFrame(loop)
		}
	}
	clock.RequestFrame(loop)

	for i := 0; i < 5; i++ {
		clock.Advance(16 * time.Millisecond)
	}
	if ticks != 3 {
		t.Errorf("loop ran %d ticks, want 3", ticks)
	}
	if clock.Pending() != 0 {
		t.Errorf("pending = %d, want 0", clock.Pending())
	}
}

func TestMockClock_Cancel(t *testing.T) {
	clock := NewMockClock(time.Unix(0, 0))

	fired := false
	req := clock.RequestFrame(func(time.Time) { fired = true })
	req.Cancel()

	if clock.Pending() != 0 {
		t.Errorf("pending after cancel = %d, want 0", clock.Pending())
	}
	clock.Advance(16 * time.Millisecond)
	if fired {
		t.Error("cancelled request fired")
	}

	// Double cancel is a no-op.
	req.Cancel()
}

func TestMockClock_SetDoesNotFire(t *testing.T) {
	clock := NewMockClock(time.Unix(0, 0))
	fired := false
	clock.RequestFrame(func(time.Time) { fired = true })

	clock.Set(time.Unix(100, 0))
	if fired {
		t.Error("Set fired a frame callback")
	}
	if got := clock.Now(); !got.Equal(time.Unix(100, 0)) {
		t.Errorf("Now = %v, want 100s", got)
	}
}

func TestRealClock_DeliversFrames(t *testing.T) {
	clock := NewRealClock(time.Millisecond)
	defer clock.Stop()

	var mu sync.Mutex
	fired := 0
	done := make(chan struct{})
	clock.RequestFrame(func(time.Time) {
		mu.Lock()
		fired++
		mu.Unlock()
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("frame callback never fired")
	}

	mu.Lock()
	defer mu.Unlock()
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
}

func TestRealClock_CancelPreventsFire(t *testing.T) {
	clock := NewRealClock(time.Millisecond)
	defer clock.Stop()

	var mu sync.Mutex
	fired := false
	req := clock.RequestFrame(func(time.Time) {
		mu.Lock()
		fired = true
		mu.Unlock()
	})
	req.Cancel()

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if fired {
		t.Error("cancelled request fired")
	}
}

func TestRealClock_StopDropsPending(t *testing.T) {
	clock := NewRealClock(time.Millisecond)

	var mu sync.Mutex
	fired := false
	clock.Stop()
	clock.RequestFrame(func(time.Time) {
		mu.Lock()
		fired = true
		mu.Unlock()
	})

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if fired {
		t.Error("request accepted after Stop fired")
	}
}
