// File: native/slot.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package native

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-timer/api"
)

// slot owns the function behind one registration and counts callbacks
// currently executing it.
type slot struct {
	id       uint64
	service  string
	fire     func()
	inflight atomic.Int32
	closed   atomic.Bool
}

func (s *slot) ID() uint64 { return s.id }

func (s *slot) String() string { return fmt.Sprintf("%s#%d", s.service, s.id) }

// invoke runs fire unless the slot was closed. The in-flight count is raised
// before the closed check so drain never misses a running callback.
func (s *slot) invoke() {
	if s.closed.Load() {
		return
	}
	s.inflight.Add(1)
	defer s.inflight.Add(-1)
	if s.closed.Load() {
		return
	}
	s.fire()
}

// close reports whether this call closed the slot.
func (s *slot) close() bool { return s.closed.CompareAndSwap(false, true) }

func (s *slot) busy() bool { return s.inflight.Load() > 0 }

// drain waits until no callback executes fire.
func (s *slot) drain() {
	for s.busy() {
		time.Sleep(50 * time.Microsecond)
	}
}

// registry maps ids handed to native callbacks back to their slots. Native
// services receive the id as a plain integer so no Go pointer crosses into
// the OS.
type registry struct {
	service string
	next    atomic.Uint64
	slots   sync.Map // uint64 -> *slot
}

func newRegistry(service string) *registry {
	return &registry{service: service}
}

func (r *registry) add(fire func()) *slot {
	s := &slot{id: r.next.Add(1), service: r.service, fire: fire}
	r.slots.Store(s.id, s)
	return s
}

func (r *registry) lookup(id uint64) *slot {
	v, ok := r.slots.Load(id)
	if !ok {
		return nil
	}
	return v.(*slot)
}

// dispatch invokes the slot registered under id, if any.
func (r *registry) dispatch(id uint64) {
	if s := r.lookup(id); s != nil {
		s.invoke()
	}
}

func (r *registry) remove(s *slot) {
	r.slots.Delete(s.id)
}

func (r *registry) len() int {
	n := 0
	r.slots.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func checkRegister(service string, interval time.Duration, fire func()) error {
	if fire == nil {
		return api.NewError(api.ErrCodeInvalidArgument, "nil callback").WithContext("service", service)
	}
	if interval <= 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "interval must be > 0").
			WithContext("service", service).
			WithContext("interval", interval)
	}
	return nil
}

func foreignRegistration(service string, reg Registration) error {
	return api.NewError(api.ErrCodeInvalidArgument, "registration belongs to another service").
		WithContext("service", service).
		WithContext("registration", fmt.Sprint(reg))
}
