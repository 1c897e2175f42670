//go:build windows
// +build windows

// File: native/winmm_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package native

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/windows"

	"github.com/momentics/hioload-timer/api"
)

// WinMMName identifies the multimedia timer service.
const WinMMName = "winmm"

const (
	timePeriodic         = 0x0001
	timeCallbackFunction = 0x0000
	timeKillSynchronous  = 0x0100
)

var (
	winmmSlots = newRegistry(WinMMName)

	winmmCallback = windows.NewCallback(func(_, _, user, _, _ uintptr) uintptr {
		winmmSlots.dispatch(uint64(user))
		return 0
	})
)

// WinMM registers periodic multimedia timers with timeSetEvent. Intervals
// are rounded up to whole milliseconds.
type WinMM struct {
	resolution time.Duration
}

var _ Service = (*WinMM)(nil)

// NewWinMM returns the multimedia timer service at the highest resolution.
func NewWinMM() *WinMM { return &WinMM{} }

// WithResolution sets the requested event resolution. Zero asks for the
// highest resolution; values above the interval are clamped to it.
func (w *WinMM) WithResolution(d time.Duration) *WinMM {
	if d >= 0 {
		w.resolution = d
	}
	return w
}

type mmReg struct {
	*slot
	eventID uintptr

	mu     sync.Mutex
	killed bool
}

func (w *WinMM) Name() string { return WinMMName }

func (w *WinMM) Register(interval time.Duration, fire func()) (Registration, error) {
	if err := checkRegister(WinMMName, interval, fire); err != nil {
		return nil, err
	}
	delay := Millis(interval)
	var res uint32
	if w.resolution > 0 {
		res = Millis(w.resolution)
	}
	if res > delay {
		res = delay
	}
	r := &mmReg{slot: winmmSlots.add(fire)}
	id, _, _ := procTimeSetEvent.Call(
		uintptr(delay),
		uintptr(res),
		winmmCallback,
		uintptr(r.id),
		timePeriodic|timeCallbackFunction|timeKillSynchronous,
	)
	if id == 0 {
		winmmSlots.remove(r.slot)
		return nil, fmt.Errorf("winmm: timeSetEvent(%d ms) failed", delay)
	}
	r.eventID = id
	return r, nil
}

func (w *WinMM) Cancel(reg Registration, wait bool) error {
	r, ok := reg.(*mmReg)
	if !ok {
		return foreignRegistration(WinMMName, reg)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.killed {
		if ret, _, _ := procTimeKillEvent.Call(r.eventID); ret != timerrNoError {
			return fmt.Errorf("winmm: timeKillEvent(%d) returned %d", r.eventID, ret)
		}
		r.killed = true
		r.close()
	}
	if r.busy() {
		if !wait {
			return api.ErrCancelPending
		}
		r.drain()
	}
	winmmSlots.remove(r.slot)
	return nil
}

// BeginHighResolution requests a 1 ms system timer period.
func (w *WinMM) BeginHighResolution() error { return beginPeriod() }

// EndHighResolution releases the period request.
func (w *WinMM) EndHighResolution() { endPeriod() }
