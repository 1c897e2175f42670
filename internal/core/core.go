// File: internal/core/core.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Base carries the state every backend shares: identity, interval,
// lifecycle state, subscribers, delivery statistics and probe registration.
// Backends embed it and own the transitions between states.

package core

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-timer/api"
	"github.com/momentics/hioload-timer/control"
	"github.com/momentics/hioload-timer/internal/logs"
	"github.com/momentics/hioload-timer/internal/notify"
)

// MinInterval is the smallest accepted interval; engines schedule in microseconds.
const MinInterval = time.Microsecond

var defaultLogger = logs.NewLogger("hioload-timer")

// Config is filled by backend options.
type Config struct {
	Name     string
	Logger   logrus.FieldLogger
	Probes   *control.DebugProbes
	Clock    api.Clock
	Interval time.Duration
}

// Base implements the backend-independent half of api.Timer.
type Base struct {
	// Mu serializes lifecycle transitions. It is never held while handlers run.
	Mu sync.Mutex

	name     string
	backend  string
	log      logrus.FieldLogger
	probes   *control.DebugProbes
	subs     *notify.List
	interval atomic.Int64
	state    atomic.Int32

	delivered  atomic.Uint64
	suppressed atomic.Uint64
	maxLate    atomic.Int64
	lastSeq    atomic.Uint64
}

// NewBase applies defaults to cfg and registers the stats probe.
func NewBase(backend string, cfg Config) *Base {
	if cfg.Name == "" {
		cfg.Name = backend + "-" + xid.New().String()
	}
	if cfg.Logger == nil {
		cfg.Logger = defaultLogger
	}
	if cfg.Interval <= 0 {
		cfg.Interval = api.DefaultInterval
	}
	b := &Base{
		name:    cfg.Name,
		backend: backend,
		probes:  cfg.Probes,
	}
	b.log = cfg.Logger.WithFields(logrus.Fields{"timer": cfg.Name, "backend": backend})
	b.subs = notify.NewList(func(value any, stack []byte) {
		b.log.WithError(notify.PanicError(value)).
			WithField("stack", string(stack)).
			Error("tick handler panicked")
	})
	b.interval.Store(int64(cfg.Interval))
	b.state.Store(int32(api.StateCreated))
	if b.probes != nil {
		b.probes.RegisterProbe(b.ProbeName(), func() any { return b.Stats() })
	}
	return b
}

// Name identifies the instance.
func (b *Base) Name() string { return b.name }

// Backend names the implementation.
func (b *Base) Backend() string { return b.backend }

// Log returns the instance logger.
func (b *Base) Log() logrus.FieldLogger { return b.log }

// ProbeName is the key of the stats probe.
func (b *Base) ProbeName() string { return "timer." + b.name }

// State returns the lifecycle state.
func (b *Base) State() api.State { return api.State(b.state.Load()) }

// SetState stores s. Callers hold Mu.
func (b *Base) SetState(s api.State) {
	prev := api.State(b.state.Swap(int32(s)))
	if prev != s {
		b.log.WithFields(logrus.Fields{"from": prev.String(), "to": s.String()}).Debug("state change")
	}
}

// IsRunning reports whether the timer is in the running state.
func (b *Base) IsRunning() bool { return b.State() == api.StateRunning }

// Disposed reports whether the timer reached its terminal state.
func (b *Base) Disposed() bool { return b.State() == api.StateDisposed }

// Interval returns the configured interval.
func (b *Base) Interval() time.Duration { return time.Duration(b.interval.Load()) }

// IntervalMicros returns the interval in whole microseconds.
func (b *Base) IntervalMicros() int64 { return time.Duration(b.interval.Load()).Microseconds() }

// SetInterval validates and stores d. The previous value is kept on error.
func (b *Base) SetInterval(d time.Duration) error {
	if b.Disposed() {
		return api.Disposed(b.name)
	}
	if d < MinInterval {
		return api.InvalidInterval(b.name, d)
	}
	b.interval.Store(int64(d))
	return nil
}

// Subscribe adds h to the subscriber list.
func (b *Base) Subscribe(h api.Handler) (func(), error) {
	if b.Disposed() {
		return nil, api.Disposed(b.name)
	}
	if h == nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "nil handler").WithContext("timer", b.name)
	}
	return b.subs.Add(h), nil
}

// Subscribers returns the number of registered handlers.
func (b *Base) Subscribers() int { return b.subs.Len() }

// Deliver records ev and hands it to every subscriber.
func (b *Base) Deliver(ev api.TickEvent) {
	b.lastSeq.Store(ev.Sequence)
	b.delivered.Add(1)
	for {
		cur := b.maxLate.Load()
		if ev.LateByMicros <= cur || b.maxLate.CompareAndSwap(cur, ev.LateByMicros) {
			break
		}
	}
	b.subs.Deliver(ev)
}

// Suppress records a tick dropped by the late policy.
func (b *Base) Suppress(seq uint64) {
	b.lastSeq.Store(seq)
	b.suppressed.Add(1)
}

// ResetRun clears per-run counters on Start.
func (b *Base) ResetRun() {
	b.lastSeq.Store(0)
}

// Stats snapshots the delivery counters.
func (b *Base) Stats() api.Stats {
	return api.Stats{
		Delivered:    b.delivered.Load(),
		Suppressed:   b.suppressed.Load(),
		MaxLateMicro: b.maxLate.Load(),
		LastSequence: b.lastSeq.Load(),
	}
}

// Release clears subscribers and drops the stats probe. Callers have
// already set StateDisposed and waited for quiescence.
func (b *Base) Release() {
	b.subs.Clear()
	if b.probes != nil {
		b.probes.UnregisterProbe(b.ProbeName())
	}
	b.log.Debug("disposed")
}

// WaitChan waits for done to close, bounded by timeout. A negative timeout
// waits forever, zero only polls.
func WaitChan(done <-chan struct{}, timeout time.Duration) bool {
	if done == nil {
		return true
	}
	if timeout < 0 {
		<-done
		return true
	}
	if timeout == 0 {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-done:
		return true
	case <-t.C:
		return false
	}
}

// WaitZero polls counter until it reaches zero or timeout elapses, with the
// same timeout convention as WaitChan.
func WaitZero(counter *atomic.Int64, timeout time.Duration) bool {
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	for counter.Load() > 0 {
		if timeout >= 0 && !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(pollInterval)
	}
	return true
}

const pollInterval = 50 * time.Microsecond
