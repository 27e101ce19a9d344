// Package clock abstracts the time source used for connection ages, the
// idle sweep timer and cache expiry. Production code uses Real; tests use
// Fake and move time forward explicitly.
package clock

import "time"

// Clock is the subset of the time package the library depends on.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc calls f once after d elapses and returns a Timer that can
	// cancel the pending call.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a pending AfterFunc call.
type Timer struct {
	stopFunc func() bool
}

// Stop prevents the Timer from firing. Returns false if the timer has
// already fired or been stopped.
func (t *Timer) Stop() bool { return t.stopFunc() }

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) *Timer {
	timer := time.AfterFunc(d, f)
	return &Timer{stopFunc: timer.Stop}
}
