// File: api/timer.go
// Package api defines the periodic timer capability contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "time"

// WaitForever disables the timeout of StopAndWait.
const WaitForever time.Duration = -1

// DefaultInterval is the interval of a freshly created timer.
const DefaultInterval = time.Millisecond

// Handler receives tick notifications. Handlers run inline on the
// delivering execution context and must not block indefinitely.
type Handler func(ev TickEvent)

// Timer is the contract every backend satisfies.
//
// Lifecycle: Created -> Running <-> Stopped -> Disposed. Disposed is terminal,
// every operation after Dispose fails with ErrInvalidState.
//
// Interval changes take effect on the next fire for the spin engine. OS
// callback backends fix the interval at registration: Stop and Start again
// to apply a new value.
type Timer interface {
	// Name identifies the instance in logs and probes.
	Name() string
	// Backend reports the implementation, e.g. "spin" or "timerqueue".
	Backend() string

	SetInterval(d time.Duration) error
	Interval() time.Duration

	State() State
	IsRunning() bool

	// Start fails with ErrInvalidState if the timer is running or disposed.
	Start() error
	// Stop requests shutdown without waiting for the execution context to quiesce.
	Stop() error
	// StopAndWait stops the timer and blocks until quiescence or timeout.
	// It reports whether quiescence was observed. A negative timeout waits forever.
	// Must not be called from a handler of the same timer.
	StopAndWait(timeout time.Duration) (bool, error)

	// Subscribe appends h to the ordered subscriber list. The returned
	// function removes it again and is safe to call more than once.
	Subscribe(h Handler) (unsubscribe func(), err error)

	Stats() Stats

	// Dispose stops the timer, waits for quiescence, releases native
	// resources and clears subscribers. No notification is delivered after
	// it returns. Repeated calls return nil.
	Dispose() error
}

// Clock is a monotonic microsecond clock. Values never decrease within a
// process run; the epoch is arbitrary.
type Clock interface {
	NowMicros() int64
}
