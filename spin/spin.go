// File: spin/spin.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package spin

import (
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-timer/affinity"
	"github.com/momentics/hioload-timer/api"
	"github.com/momentics/hioload-timer/clock"
	"github.com/momentics/hioload-timer/internal/core"
)

// BackendName identifies the spin engine.
const BackendName = "spin"

// noThreshold disables late suppression.
const noThreshold = math.MaxInt64

// Timer is the busy-wait engine. It satisfies api.Timer.
type Timer struct {
	*core.Base

	clk   api.Clock
	cpu   int
	raise bool

	lateThreshold atomic.Int64 // microseconds
	keepRunning   atomic.Bool

	// done is closed when the current worker returns. Guarded by Mu.
	done chan struct{}
}

var _ api.Timer = (*Timer)(nil)

// New creates a stopped spin timer.
func New(opts ...Option) *Timer {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Default
	}
	if cfg.Interval < core.MinInterval {
		cfg.Interval = api.DefaultInterval
	}
	t := &Timer{
		Base:  core.NewBase(BackendName, cfg.Config),
		clk:   cfg.Clock,
		cpu:   cfg.cpu,
		raise: cfg.raise,
	}
	t.lateThreshold.Store(noThreshold)
	if cfg.lateThreshold >= time.Microsecond {
		t.lateThreshold.Store(cfg.lateThreshold.Microseconds())
	}
	return t
}

// SetLateThreshold suppresses ticks late by d or more. d must be at least
// one microsecond; use ClearLateThreshold to disable suppression.
func (t *Timer) SetLateThreshold(d time.Duration) error {
	if t.Disposed() {
		return api.Disposed(t.Name())
	}
	if d < time.Microsecond {
		return api.NewError(api.ErrCodeInvalidArgument, "late threshold must be >= 1us").
			WithContext("timer", t.Name()).
			WithContext("threshold", d)
	}
	t.lateThreshold.Store(d.Microseconds())
	return nil
}

// ClearLateThreshold disables suppression: every tick is delivered.
func (t *Timer) ClearLateThreshold() {
	t.lateThreshold.Store(noThreshold)
}

// LateThreshold returns the threshold and whether suppression is enabled.
func (t *Timer) LateThreshold() (time.Duration, bool) {
	us := t.lateThreshold.Load()
	if us == noThreshold {
		return 0, false
	}
	return time.Duration(us) * time.Microsecond, true
}

// Start launches the worker. A worker still winding down from a previous
// Stop is awaited first; it exits within one handler execution.
func (t *Timer) Start() error {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	for {
		switch t.State() {
		case api.StateDisposed:
			return api.Disposed(t.Name())
		case api.StateRunning:
			return api.NewError(api.ErrCodeInvalidState, "timer is already running").WithContext("timer", t.Name())
		}
		prev := t.done
		if core.WaitChan(prev, 0) {
			break
		}
		// The old worker's handlers may still call Stop; do not hold Mu.
		t.Mu.Unlock()
		<-prev
		t.Mu.Lock()
	}
	done := make(chan struct{})
	t.done = done
	t.ResetRun()
	t.keepRunning.Store(true)
	t.SetState(api.StateRunning)
	go t.run(done)
	t.Log().WithField("interval", t.Interval()).Debug("started")
	return nil
}

// Stop clears the keep-running flag and returns immediately. Stopping a
// timer that is not running is a no-op. Safe to call from a handler.
func (t *Timer) Stop() error {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	if t.State() == api.StateDisposed {
		return api.Disposed(t.Name())
	}
	t.stopLocked()
	return nil
}

func (t *Timer) stopLocked() {
	t.keepRunning.Store(false)
	if t.State() == api.StateRunning {
		t.SetState(api.StateStopped)
	}
}

// StopAndWait stops the timer and waits for the worker to return.
func (t *Timer) StopAndWait(timeout time.Duration) (bool, error) {
	t.Mu.Lock()
	if t.State() == api.StateDisposed {
		t.Mu.Unlock()
		return false, api.Disposed(t.Name())
	}
	t.stopLocked()
	done := t.done
	t.Mu.Unlock()
	return core.WaitChan(done, timeout), nil
}

// Dispose stops the worker, waits for it without timeout and clears all
// subscribers. It never fails; repeated calls are no-ops. Must not be
// called from a handler of the same timer.
func (t *Timer) Dispose() error {
	t.Mu.Lock()
	if t.State() == api.StateDisposed {
		t.Mu.Unlock()
		return nil
	}
	t.keepRunning.Store(false)
	t.SetState(api.StateDisposed)
	done := t.done
	t.Mu.Unlock()

	core.WaitChan(done, api.WaitForever)
	t.Release()
	return nil
}

// run is the worker loop. The goroutine stays locked to its OS thread and
// exits locked, so affinity or priority changes die with the thread.
func (t *Timer) run(done chan struct{}) {
	defer close(done)
	runtime.LockOSThread()
	t.prepareThread()

	start := t.clk.NowMicros()
	elapsed := func() int64 { return t.clk.NowMicros() - start }

	var (
		seq  uint64
		next int64
	)
	for t.keepRunning.Load() {
		handlerMicros := elapsed() - next

		// Fresh values every pass so interval changes apply to the next fire.
		interval := t.IntervalMicros()
		threshold := t.lateThreshold.Load()

		next += interval
		seq++

		var now int64
		for {
			now = elapsed()
			if now >= next {
				break
			}
			if !t.keepRunning.Load() {
				return
			}
		}

		lateBy := now - next
		if lateBy >= threshold {
			t.Suppress(seq)
			continue
		}
		t.Deliver(api.TickEvent{
			Sequence:      seq,
			ElapsedMicros: now,
			LateByMicros:  lateBy,
			HandlerMicros: handlerMicros,
			Telemetry:     true,
		})
	}
}

func (t *Timer) prepareThread() {
	if t.cpu >= 0 {
		if err := affinity.SetAffinity(t.cpu); err != nil {
			t.Log().WithError(err).Warn("worker pinning failed")
		}
	}
	if t.raise {
		if err := affinity.RaisePriority(); err != nil {
			t.Log().WithError(err).Debug("worker priority unchanged")
		}
	}
}
