// File: clock/stopwatch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Microsecond stopwatch over an api.Clock.

package clock

import "github.com/momentics/hioload-timer/api"

// Stopwatch measures elapsed microseconds. The zero value is not usable;
// construct with NewStopwatch. Not safe for concurrent use.
type Stopwatch struct {
	clk     api.Clock
	start   int64
	elapsed int64
	running bool
}

// NewStopwatch creates a stopped stopwatch over clk (Default if nil).
func NewStopwatch(clk api.Clock) *Stopwatch {
	if clk == nil {
		clk = Default
	}
	return &Stopwatch{clk: clk}
}

// StartNew creates and starts a stopwatch.
func StartNew(clk api.Clock) *Stopwatch {
	sw := NewStopwatch(clk)
	sw.Start()
	return sw
}

// Start resumes measuring. Calling Start on a running stopwatch is a no-op.
func (sw *Stopwatch) Start() {
	if sw.running {
		return
	}
	sw.start = sw.clk.NowMicros()
	sw.running = true
}

// Stop freezes the elapsed time.
func (sw *Stopwatch) Stop() {
	if !sw.running {
		return
	}
	sw.elapsed += sw.clk.NowMicros() - sw.start
	sw.running = false
}

// Restart zeroes the elapsed time and starts measuring.
func (sw *Stopwatch) Restart() {
	sw.elapsed = 0
	sw.running = false
	sw.Start()
}

// IsRunning reports whether the stopwatch is measuring.
func (sw *Stopwatch) IsRunning() bool {
	return sw.running
}

// ElapsedMicros returns total measured microseconds.
func (sw *Stopwatch) ElapsedMicros() int64 {
	if sw.running {
		return sw.elapsed + sw.clk.NowMicros() - sw.start
	}
	return sw.elapsed
}
