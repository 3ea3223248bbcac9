package asyncclient

import "time"

// Scheduler abstracts delayed execution so poll loops can run in tests
// without real waiting.
type Scheduler interface {
	// After returns a channel that delivers once the given duration has
	// elapsed.
	After(d time.Duration) <-chan time.Time
}

// RealScheduler delegates to the wall clock.
type RealScheduler struct{}

// NewRealScheduler returns a Scheduler backed by time.After.
func NewRealScheduler() RealScheduler {
	return RealScheduler{}
}

// After implements Scheduler.
func (RealScheduler) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
