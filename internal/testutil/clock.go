package testutil

import (
	"sync"
	"time"
)

// FakeClock is a settable wall clock for tests.
//
// Unlike clock.System, FakeClock only moves when told to. This lets tests
// cross midnight, measure elapsed solve time and stamp sync entries with
// known values.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock frozen at now.
func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

// At creates a clock frozen at the given local wall time.
//
// Example:
//
//	c := testutil.At(2026, time.February, 14, 9, 30)
func At(year int, month time.Month, day, hour, minute int) *FakeClock {
	return NewFakeClock(time.Date(year, month, day, hour, minute, 0, 0, time.Local))
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
func (c *FakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Set jumps the clock to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
