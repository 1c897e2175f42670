// File: clock/clock.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package clock

import (
	"sync/atomic"

	"github.com/aristanetworks/goarista/monotime"
)

// Monotonic reads the process monotonic clock in microseconds.
type Monotonic struct{}

// NowMicros returns microseconds since an arbitrary epoch.
func (Monotonic) NowMicros() int64 {
	return int64(monotime.Now() / 1000)
}

// Default is the clock used when none is configured.
var Default Monotonic

// Stepper is a deterministic clock: every NowMicros call advances the
// reading by Step microseconds. Advance injects a stall. Safe for
// concurrent use.
type Stepper struct {
	now  atomic.Int64
	step int64
}

// NewStepper returns a clock starting at zero advancing step per read.
// A step < 1 is treated as 1 so busy-wait loops always make progress.
func NewStepper(step int64) *Stepper {
	if step < 1 {
		step = 1
	}
	return &Stepper{step: step}
}

// NowMicros advances the clock by one step and returns the new reading.
func (s *Stepper) NowMicros() int64 {
	return s.now.Add(s.step)
}

// Advance moves the clock forward by d microseconds without a read.
func (s *Stepper) Advance(d int64) {
	if d > 0 {
		s.now.Add(d)
	}
}

// Peek returns the current reading without advancing.
func (s *Stepper) Peek() int64 {
	return s.now.Load()
}
