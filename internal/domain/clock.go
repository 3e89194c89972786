package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
// Latest-run estimation depends on wall-clock publication lag; production
// code uses the real clock and tests inject a fake for deterministic output.
var clock = clockwork.NewRealClock()

// Now returns the current time from the package clock. Batch identity and
// run scheduling must see the same time source.
func Now() time.Time {
	return clock.Now()
}

// SetClock swaps the time source for run scheduling. Pass nil to reset to
// real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
