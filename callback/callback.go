// File: callback/callback.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package callback

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-timer/api"
	"github.com/momentics/hioload-timer/clock"
	"github.com/momentics/hioload-timer/internal/core"
	"github.com/momentics/hioload-timer/native"
)

// Timer drives subscribers from a native periodic callback.
type Timer struct {
	*core.Base

	svc native.Service
	clk api.Clock

	gen      atomic.Uint64 // registration generation accepted by the trampoline
	active   atomic.Bool
	inflight atomic.Int64
	seq      atomic.Uint64
	startAt  atomic.Int64
	highRes  atomic.Bool

	// Guarded by Mu.
	reg     native.Registration
	retries []retry
}

// retry is a registration whose cancel did not complete.
type retry struct {
	reg native.Registration
	// surfaced is set when the first failure was already returned.
	surfaced bool
}

var _ api.Timer = (*Timer)(nil)

// New creates a stopped timer backed by svc.
func New(svc native.Service, opts ...Option) *Timer {
	var cfg core.Config
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Default
	}
	if cfg.Interval < core.MinInterval {
		cfg.Interval = api.DefaultInterval
	}
	return &Timer{
		Base: core.NewBase(svc.Name(), cfg),
		svc:  svc,
		clk:  cfg.Clock,
	}
}

// SetInterval stores d. A running timer keeps its registered interval
// until it is restarted.
func (t *Timer) SetInterval(d time.Duration) error {
	if err := t.Base.SetInterval(d); err != nil {
		return err
	}
	if t.IsRunning() {
		t.Log().WithField("interval", d).Debug("interval applies after restart")
	}
	return nil
}

// Start registers the periodic callback.
func (t *Timer) Start() error {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	switch t.State() {
	case api.StateDisposed:
		return api.Disposed(t.Name())
	case api.StateRunning:
		return api.NewError(api.ErrCodeInvalidState, "timer is already running").WithContext("timer", t.Name())
	}

	if err := t.svc.BeginHighResolution(); err != nil {
		t.Log().WithError(err).Warn("high resolution request refused")
	} else {
		t.highRes.Store(true)
	}

	gen := t.gen.Add(1)
	t.seq.Store(0)
	t.ResetRun()
	t.startAt.Store(t.clk.NowMicros())
	t.active.Store(true)

	interval := t.Interval()
	reg, err := t.svc.Register(interval, t.trampoline(gen))
	if err != nil {
		t.active.Store(false)
		t.endHighRes()
		return api.NewError(api.ErrCodeNativeRegistration, "native timer registration failed").
			WithContext("timer", t.Name()).
			WithContext("service", t.svc.Name()).
			WithContext("interval", interval).
			WithCause(err)
	}
	t.reg = reg
	t.SetState(api.StateRunning)
	t.Log().WithFields(logrus.Fields{"interval": interval, "registration": reg.String()}).Debug("started")
	return nil
}

// trampoline is the function handed to the native service. Callbacks of an
// older generation, or arriving after Stop, are dropped.
func (t *Timer) trampoline(gen uint64) func() {
	return func() {
		t.inflight.Add(1)
		defer t.inflight.Add(-1)
		if !t.active.Load() || t.gen.Load() != gen {
			return
		}
		t.Deliver(api.TickEvent{
			Sequence:      t.seq.Add(1),
			ElapsedMicros: t.clk.NowMicros() - t.startAt.Load(),
		})
	}
}

// Stop cancels the native registration without waiting for a callback in
// flight. It fails with InvalidState when the timer is not running. Safe
// to call from a handler.
func (t *Timer) Stop() error {
	t.Mu.Lock()
	switch t.State() {
	case api.StateDisposed:
		t.Mu.Unlock()
		return api.Disposed(t.Name())
	case api.StateRunning:
	default:
		t.Mu.Unlock()
		return api.NewError(api.ErrCodeInvalidState, "timer is not running").WithContext("timer", t.Name())
	}
	reg := t.detachLocked()
	t.SetState(api.StateStopped)
	t.Mu.Unlock()
	return t.cancel(reg)
}

// StopAndWait stops a running timer, waits for callbacks in flight and
// completes cancellations left pending by earlier calls. On a timer that
// is already stopped it only waits.
func (t *Timer) StopAndWait(timeout time.Duration) (bool, error) {
	t.Mu.Lock()
	if t.State() == api.StateDisposed {
		t.Mu.Unlock()
		return false, api.Disposed(t.Name())
	}
	var reg native.Registration
	if t.State() == api.StateRunning {
		reg = t.detachLocked()
		t.SetState(api.StateStopped)
	}
	t.Mu.Unlock()

	var err error
	if reg != nil {
		err = t.cancel(reg)
	}
	if !core.WaitZero(&t.inflight, timeout) {
		return false, err
	}
	if rerr := t.completeRetries(); err == nil {
		err = rerr
	}
	return true, err
}

// Dispose stops the timer, waits without timeout for callbacks in flight
// and releases the native registration. The first cancellation failure is
// returned; a repeated failure on retry is logged. Later calls return nil.
// Must not be called from a handler of the same timer.
func (t *Timer) Dispose() error {
	t.Mu.Lock()
	if t.State() == api.StateDisposed {
		t.Mu.Unlock()
		return nil
	}
	reg := t.detachLocked()
	t.SetState(api.StateDisposed)
	t.Mu.Unlock()

	var first error
	if reg != nil {
		first = t.cancel(reg)
	}
	core.WaitZero(&t.inflight, api.WaitForever)
	if err := t.completeRetries(); first == nil {
		first = err
	}
	t.Release()
	return first
}

// detachLocked closes the trampoline gate, drops the resolution request
// and takes the live registration.
func (t *Timer) detachLocked() native.Registration {
	t.active.Store(false)
	t.endHighRes()
	reg := t.reg
	t.reg = nil
	return reg
}

// cancel issues a non-blocking cancel. Pending and failed cancels are kept
// for a blocking retry.
func (t *Timer) cancel(reg native.Registration) error {
	err := t.svc.Cancel(reg, false)
	if err == nil {
		return nil
	}
	pending := errors.Is(err, api.ErrCancelPending)
	t.Mu.Lock()
	t.retries = append(t.retries, retry{reg: reg, surfaced: !pending})
	t.Mu.Unlock()
	if pending {
		t.Log().WithField("registration", reg.String()).Debug("cancel pending")
		return nil
	}
	return t.cancelError(reg, err)
}

// completeRetries repeats every outstanding cancel with wait set.
func (t *Timer) completeRetries() error {
	t.Mu.Lock()
	retries := t.retries
	t.retries = nil
	t.Mu.Unlock()

	var first error
	for _, r := range retries {
		err := t.svc.Cancel(r.reg, true)
		if err == nil {
			continue
		}
		if r.surfaced || first != nil {
			t.Log().WithError(err).WithField("registration", r.reg.String()).
				Warn("native cancellation failed again")
			continue
		}
		first = t.cancelError(r.reg, err)
	}
	return first
}

func (t *Timer) cancelError(reg native.Registration, err error) error {
	return api.NewError(api.ErrCodeNativeCancellation, "native timer cancellation failed").
		WithContext("timer", t.Name()).
		WithContext("service", t.svc.Name()).
		WithContext("registration", reg.String()).
		WithCause(err)
}

func (t *Timer) endHighRes() {
	if t.highRes.CompareAndSwap(true, false) {
		t.svc.EndHighResolution()
	}
}
