//go:build linux
// +build linux

// File: native/nanosleep_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package native

import (
	"runtime"
	"time"

	"github.com/aristanetworks/goarista/monotime"
	"golang.org/x/sys/unix"
)

// NanosleepName identifies the Linux hybrid service.
const NanosleepName = "nanosleep"

// DefaultSpinMargin is how long before the deadline the loop stops sleeping
// and starts polling the clock.
const DefaultSpinMargin = 100 * time.Microsecond

// Nanosleep runs each registration on a locked OS thread that sleeps with
// nanosleep(2) until shortly before the deadline and spins for the rest.
// Deadlines are phase anchored; periods missed entirely are skipped.
type Nanosleep struct {
	reg        *registry
	spinMargin time.Duration
}

var _ Service = (*Nanosleep)(nil)

// NewNanosleep returns the hybrid service with DefaultSpinMargin.
func NewNanosleep() *Nanosleep {
	return &Nanosleep{reg: newRegistry(NanosleepName), spinMargin: DefaultSpinMargin}
}

// WithSpinMargin changes the spin margin for registrations made afterwards.
// Zero disables spinning.
func (n *Nanosleep) WithSpinMargin(d time.Duration) *Nanosleep {
	if d >= 0 {
		n.spinMargin = d
	}
	return n
}

func (n *Nanosleep) Name() string { return NanosleepName }

func (n *Nanosleep) Register(interval time.Duration, fire func()) (Registration, error) {
	if err := checkRegister(NanosleepName, interval, fire); err != nil {
		return nil, err
	}
	r := newLoopReg(n.reg.add(fire))
	go n.loop(r, int64(interval), int64(n.spinMargin))
	return r, nil
}

func (n *Nanosleep) loop(r *loopReg, interval, margin int64) {
	defer close(r.done)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	next := int64(monotime.Now())
	for !r.closed.Load() {
		next += interval
		now := int64(monotime.Now())
		if behind := now - next; behind >= interval {
			next += behind / interval * interval
		}
		if rem := next - now - margin; rem > 0 {
			sleep(rem)
		}
		for int64(monotime.Now()) < next {
			if r.closed.Load() {
				return
			}
		}
		r.invoke()
	}
}

// sleep blocks the thread for ns nanoseconds, resuming after signals.
func sleep(ns int64) {
	ts := unix.NsecToTimespec(ns)
	var rem unix.Timespec
	for unix.Nanosleep(&ts, &rem) == unix.EINTR {
		ts = rem
	}
}

func (n *Nanosleep) Cancel(reg Registration, wait bool) error {
	r, ok := reg.(*loopReg)
	if !ok || r.service != NanosleepName {
		return foreignRegistration(NanosleepName, reg)
	}
	return cancelLoop(n.reg, r, wait)
}

// BeginHighResolution is a no-op; Linux hrtimers need no request.
func (n *Nanosleep) BeginHighResolution() error { return nil }

// EndHighResolution is a no-op.
func (n *Nanosleep) EndHighResolution() {}
