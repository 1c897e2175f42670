//go:build windows
// +build windows

// File: native/timerqueue_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package native

import (
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/momentics/hioload-timer/api"
)

// TimerQueueName identifies the timer-queue service.
const TimerQueueName = "timerqueue"

const wtExecuteDefault = 0x0

var (
	modkernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procCreateTimerQueueTimer = modkernel32.NewProc("CreateTimerQueueTimer")
	procDeleteTimerQueueTimer = modkernel32.NewProc("DeleteTimerQueueTimer")

	timerQueueSlots = newRegistry(TimerQueueName)

	// One callback for the process; the slot id travels as the parameter.
	timerQueueCallback = windows.NewCallback(func(param, _ uintptr) uintptr {
		timerQueueSlots.dispatch(uint64(param))
		return 0
	})
)

// TimerQueue registers callbacks in the default process timer queue.
// Callbacks run on the system thread pool and may overlap when a callback
// outlasts the interval. Intervals are rounded up to whole milliseconds.
type TimerQueue struct{}

var _ Service = (*TimerQueue)(nil)

// NewTimerQueue returns the timer-queue service.
func NewTimerQueue() *TimerQueue { return &TimerQueue{} }

type tqReg struct {
	*slot
	handle windows.Handle

	mu       sync.Mutex
	deleting bool // delete accepted, callbacks still draining
	deleted  bool
}

func (q *TimerQueue) Name() string { return TimerQueueName }

func (q *TimerQueue) Register(interval time.Duration, fire func()) (Registration, error) {
	if err := checkRegister(TimerQueueName, interval, fire); err != nil {
		return nil, err
	}
	r := &tqReg{slot: timerQueueSlots.add(fire)}
	ms := uintptr(Millis(interval))
	ret, _, err := procCreateTimerQueueTimer.Call(
		uintptr(unsafe.Pointer(&r.handle)),
		0, // default queue
		timerQueueCallback,
		uintptr(r.id),
		ms,
		ms,
		wtExecuteDefault,
	)
	if ret == 0 {
		timerQueueSlots.remove(r.slot)
		return nil, err
	}
	return r, nil
}

func (q *TimerQueue) Cancel(reg Registration, wait bool) error {
	r, ok := reg.(*tqReg)
	if !ok {
		return foreignRegistration(TimerQueueName, reg)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleted {
		return nil
	}
	r.close()
	if r.deleting {
		// The handle is already gone; only our callbacks remain.
		if !wait && r.busy() {
			return api.ErrCancelPending
		}
		r.drain()
		r.finish()
		return nil
	}

	event := uintptr(0)
	if wait {
		event = uintptr(windows.InvalidHandle)
	}
	ret, _, err := procDeleteTimerQueueTimer.Call(0, uintptr(r.handle), event)
	if ret == 0 {
		if err == windows.ERROR_IO_PENDING {
			r.deleting = true
			return api.ErrCancelPending
		}
		return err
	}
	r.finish()
	return nil
}

func (r *tqReg) finish() {
	r.deleted = true
	timerQueueSlots.remove(r.slot)
}

// BeginHighResolution requests a 1 ms system timer period.
func (q *TimerQueue) BeginHighResolution() error { return beginPeriod() }

// EndHighResolution releases the period request.
func (q *TimerQueue) EndHighResolution() { endPeriod() }
