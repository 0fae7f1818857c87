package mera

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock stamps resolved locations so tests can freeze time via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for resolution stamps. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current time of the package clock in UTC.
func Now() time.Time {
	return clock.Now().UTC()
}
