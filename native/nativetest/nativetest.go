// File: native/nativetest/nativetest.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package nativetest provides a scriptable native.Service for backend tests.
// Callbacks run only when the test calls Fire.

package nativetest

import (
	"fmt"
	"sync"
	"time"

	"github.com/momentics/hioload-timer/native"
)

// Name is reported by Service.Name.
const Name = "fake"

// Reg is a registration made with the fake service.
type Reg struct {
	id       uint64
	interval time.Duration
	fire     func()

	mu        sync.Mutex
	cancelled bool
}

func (r *Reg) ID() uint64 { return r.id }

func (r *Reg) String() string { return fmt.Sprintf("%s#%d", Name, r.id) }

// Interval returns the interval passed to Register.
func (r *Reg) Interval() time.Duration { return r.interval }

// Cancelled reports whether a cancel succeeded.
func (r *Reg) Cancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}

// Fire invokes the callback even after cancellation, imitating a native
// callback racing with teardown.
func (r *Reg) Fire() { r.fire() }

// CancelCall records one Cancel invocation.
type CancelCall struct {
	Reg  *Reg
	Wait bool
}

// Service is the fake. The zero value is not usable; call New.
type Service struct {
	mu          sync.Mutex
	next        uint64
	regs        []*Reg
	registerErr []error
	cancelErr   []error
	calls       []CancelCall
	highResErr  error
	begins      int
	ends        int
}

var _ native.Service = (*Service)(nil)

// New returns an empty fake service.
func New() *Service { return &Service{} }

func (s *Service) Name() string { return Name }

// FailRegister queues results for upcoming Register calls. A nil entry
// lets that call succeed.
func (s *Service) FailRegister(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registerErr = append(s.registerErr, errs...)
}

// ScriptCancel queues results for upcoming Cancel calls, for example
// api.ErrCancelPending followed by nil.
func (s *Service) ScriptCancel(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelErr = append(s.cancelErr, errs...)
}

// FailHighResolution makes BeginHighResolution return err.
func (s *Service) FailHighResolution(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highResErr = err
}

func (s *Service) Register(interval time.Duration, fire func()) (native.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.registerErr) > 0 {
		err := s.registerErr[0]
		s.registerErr = s.registerErr[1:]
		if err != nil {
			return nil, err
		}
	}
	s.next++
	r := &Reg{id: s.next, interval: interval, fire: fire}
	s.regs = append(s.regs, r)
	return r, nil
}

func (s *Service) Cancel(reg native.Registration, wait bool) error {
	r, ok := reg.(*Reg)
	if !ok {
		return fmt.Errorf("nativetest: foreign registration %v", reg)
	}
	s.mu.Lock()
	s.calls = append(s.calls, CancelCall{Reg: r, Wait: wait})
	var err error
	if len(s.cancelErr) > 0 {
		err = s.cancelErr[0]
		s.cancelErr = s.cancelErr[1:]
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.cancelled = true
	r.mu.Unlock()
	return nil
}

func (s *Service) BeginHighResolution() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.highResErr != nil {
		return s.highResErr
	}
	s.begins++
	return nil
}

func (s *Service) EndHighResolution() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ends++
}

// Fire invokes every live registration once and returns how many ran.
func (s *Service) Fire() int {
	n := 0
	for _, r := range s.Registrations() {
		if !r.Cancelled() {
			r.Fire()
			n++
		}
	}
	return n
}

// Registrations returns every registration made so far.
func (s *Service) Registrations() []*Reg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Reg(nil), s.regs...)
}

// Last returns the most recent registration, or nil.
func (s *Service) Last() *Reg {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.regs) == 0 {
		return nil
	}
	return s.regs[len(s.regs)-1]
}

// Active counts registrations not yet cancelled.
func (s *Service) Active() int {
	n := 0
	for _, r := range s.Registrations() {
		if !r.Cancelled() {
			n++
		}
	}
	return n
}

// CancelCalls returns every Cancel invocation in order.
func (s *Service) CancelCalls() []CancelCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CancelCall(nil), s.calls...)
}

// HighResolution returns how often Begin and End were called.
func (s *Service) HighResolution() (begins, ends int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begins, s.ends
}
