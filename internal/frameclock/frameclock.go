// Package frameclock provides a testable abstraction over an
// animation-frame style tick source.
//
// A Clock hands out one callback per requested frame. Consumers that want
// a continuous loop re-request from inside their callback, which keeps the
// loop cooperative: the loop stops as soon as nobody re-requests.
package frameclock

import (
	"sync"
	"time"
)

// DefaultFrameInterval is the nominal frame period (~60 Hz).
const DefaultFrameInterval = 16 * time.Millisecond

// Clock provides frame scheduling and wall-clock time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// RequestFrame schedules cb to run exactly once on the next available
	// frame. The returned Request can cancel the callback before it fires.
	RequestFrame(cb func(now time.Time)) Request
}

// Request is a handle to a pending frame callback.
type Request interface {
	// Cancel prevents the callback from firing. Cancelling an already
	// fired or cancelled request is a no-op.
	Cancel()
}

// RealClock implements Clock using a time.Ticker. All callbacks for a
// given frame run sequentially on a single dispatch goroutine, so
// consumers see the same single-threaded ordering a UI frame loop gives.
type RealClock struct {
	mu      sync.Mutex
	pending []*realRequest
	ticker  *time.Ticker
	done    chan struct{}
	stopped bool
}

// NewRealClock starts a real frame clock ticking at the given interval.
// A non-positive interval falls back to DefaultFrameInterval.
func NewRealClock(interval time.Duration) *RealClock {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	c := &RealClock{
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	go c.dispatch()
	return c
}

// Now returns the current time.
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// RequestFrame schedules cb for the next tick of the underlying ticker.
func (c *RealClock) RequestFrame(cb func(now time.Time)) Request {
	r := &realRequest{cb: cb}
	c.mu.Lock()
	if !c.stopped {
		c.pending = append(c.pending, r)
	}
	c.mu.Unlock()
	return r
}

// Stop shuts down the dispatch goroutine. Pending callbacks never fire.
// The clock cannot be restarted.
func (c *RealClock) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.pending = nil
	c.mu.Unlock()
	c.ticker.Stop()
	close(c.done)
}

func (c *RealClock) dispatch() {
	for {
		select {
		case now := <-c.ticker.C:
			c.mu.Lock()
			batch := c.pending
			c.pending = nil
			c.mu.Unlock()
			for _, r := range batch {
				r.fire(now)
			}
		case <-c.done:
			return
		}
	}
}

type realRequest struct {
	mu        sync.Mutex
	cb        func(time.Time)
	cancelled bool
}

func (r *realRequest) Cancel() {
	r.mu.Lock()
	r.cancelled = true
	r.cb = nil
	r.mu.Unlock()
}

func (r *realRequest) fire(now time.Time) {
	r.mu.Lock()
	cb := r.cb
	r.cb = nil
	r.mu.Unlock()
	if cb != nil {
		cb(now)
	}
}

// MockClock is a manually stepped frame clock for tests. Frames only fire
// when the test calls Step or Advance, so scheduler behaviour is fully
// deterministic.
type MockClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*mockRequest
}

// NewMockClock creates a MockClock set to the given time.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// Now returns the mocked current time.
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set sets the mock clock to a specific time without firing frames.
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// RequestFrame queues cb until the next Step or Advance.
func (c *MockClock) RequestFrame(cb func(now time.Time)) Request {
	r := &mockRequest{cb: cb}
	c.mu.Lock()
	c.pending = append(c.pending, r)
	c.mu.Unlock()
	return r
}

// Pending reports how many frame callbacks are queued.
func (c *MockClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, r := range c.pending {
		if !r.cancelled() {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d and fires one frame. Callbacks
// queued by the fired callbacks wait for the next Advance, matching how a
// frame loop re-requests itself.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	batch := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, r := range batch {
		r.fire(now)
	}
}

// Step fires one frame at the current time plus a nominal 16ms interval.
func (c *MockClock) Step() {
	c.Advance(DefaultFrameInterval)
}

type mockRequest struct {
	mu       sync.Mutex
	cb       func(time.Time)
	canceled bool
}

func (r *mockRequest) Cancel() {
	r.mu.Lock()
	r.canceled = true
	r.cb = nil
	r.mu.Unlock()
}

func (r *mockRequest) cancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.canceled
}

func (r *mockRequest) fire(now time.Time) {
	r.mu.Lock()
	cb := r.cb
	r.cb = nil
	r.mu.Unlock()
	if cb != nil {
		cb(now)
	}
}
