// File: tickwait/tickwait.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package tickwait turns a timer's tick notifications into a blocking wait.
// At most one tick is remembered between waits; ticks arriving while a
// signal is already pending are coalesced.

package tickwait

import (
	"context"
	"sync"
	"time"

	"github.com/momentics/hioload-timer/api"
)

// Waiter holds a non-owning reference to a timer. Closing the Waiter does
// not dispose the timer.
type Waiter struct {
	timer  api.Timer
	signal chan struct{}
	closed chan struct{}

	once        sync.Once
	unsubscribe func()
}

// New subscribes a Waiter to t.
func New(t api.Timer) (*Waiter, error) {
	if t == nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "nil timer")
	}
	w := &Waiter{
		timer:  t,
		signal: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
	unsub, err := t.Subscribe(w.onTick)
	if err != nil {
		return nil, err
	}
	w.unsubscribe = unsub
	return w, nil
}

func (w *Waiter) onTick(api.TickEvent) {
	select {
	case w.signal <- struct{}{}:
	default:
	}
}

func (w *Waiter) check() error {
	select {
	case <-w.closed:
		return api.NewError(api.ErrCodeInvalidState, "waiter is closed").WithContext("timer", w.timer.Name())
	default:
	}
	if !w.timer.IsRunning() {
		return api.NewError(api.ErrCodeInvalidState, "timer is not running").
			WithContext("timer", w.timer.Name()).
			WithContext("state", w.timer.State().String())
	}
	return nil
}

// WaitForTick blocks until the next tick, consuming it. It returns false
// when timeout elapses first; api.WaitForever waits without limit and zero
// only polls. Fails with InvalidState unless the timer is running.
func (w *Waiter) WaitForTick(timeout time.Duration) (bool, error) {
	if err := w.check(); err != nil {
		return false, err
	}
	switch {
	case timeout < 0:
		select {
		case <-w.signal:
			return true, nil
		case <-w.closed:
			return false, nil
		}
	case timeout == 0:
		select {
		case <-w.signal:
			return true, nil
		default:
			return false, nil
		}
	}
	tm := time.NewTimer(timeout)
	defer tm.Stop()
	select {
	case <-w.signal:
		return true, nil
	case <-w.closed:
		return false, nil
	case <-tm.C:
		return false, nil
	}
}

// Wait blocks until the next tick or until ctx is done.
func (w *Waiter) Wait(ctx context.Context) error {
	if err := w.check(); err != nil {
		return err
	}
	select {
	case <-w.signal:
		return nil
	case <-w.closed:
		return api.NewError(api.ErrCodeInvalidState, "waiter is closed").WithContext("timer", w.timer.Name())
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending reports whether a coalesced tick is waiting to be consumed.
func (w *Waiter) Pending() bool { return len(w.signal) > 0 }

// Close unsubscribes from the timer and wakes blocked waiters. Repeated
// calls are no-ops.
func (w *Waiter) Close() {
	w.once.Do(func() {
		w.unsubscribe()
		close(w.closed)
	})
}
