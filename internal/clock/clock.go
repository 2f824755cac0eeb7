// Package clock abstracts wall time so that date rollover, elapsed-time
// scoring and sync timestamps can be driven deterministically in tests.
package clock

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// System is the real wall clock.
type System struct{}

// Now returns time.Now().
func (System) Now() time.Time { return time.Now() }

// Func adapts a plain function to Clock.
type Func func() time.Time

// Now calls f.
func (f Func) Now() time.Time { return f() }

// DateLayout is the calendar date format used for puzzle dates.
const DateLayout = "2006-01-02"

// Today formats c's current local date as YYYY-MM-DD.
func Today(c Clock) string {
	return c.Now().Format(DateLayout)
}
