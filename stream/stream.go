// File: stream/stream.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package stream exposes a timer's ticks as an unbounded channel. The
// subscription only appends to a buffer, so a slow reader never blocks the
// context that delivers ticks.

package stream

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-timer/api"
)

// Stream buffers every tick until it is received from C.
type Stream struct {
	mu  sync.Mutex
	buf *queue.Queue

	notify chan struct{}
	out    chan api.TickEvent
	done   chan struct{}

	once        sync.Once
	unsubscribe func()
}

// New subscribes a Stream to t and starts its pump goroutine.
func New(t api.Timer) (*Stream, error) {
	if t == nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "nil timer")
	}
	s := &Stream{
		buf:    queue.New(),
		notify: make(chan struct{}, 1),
		out:    make(chan api.TickEvent),
		done:   make(chan struct{}),
	}
	unsub, err := t.Subscribe(s.push)
	if err != nil {
		return nil, err
	}
	s.unsubscribe = unsub
	go s.pump()
	return s, nil
}

func (s *Stream) push(ev api.TickEvent) {
	s.mu.Lock()
	s.buf.Add(ev)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Stream) pop() (api.TickEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buf.Length() == 0 {
		return api.TickEvent{}, false
	}
	return s.buf.Remove().(api.TickEvent), true
}

func (s *Stream) pump() {
	defer close(s.out)
	for {
		ev, ok := s.pop()
		if !ok {
			select {
			case <-s.notify:
				continue
			case <-s.done:
				return
			}
		}
		select {
		case s.out <- ev:
		case <-s.done:
			return
		}
	}
}

// C delivers ticks in sequence order. It is closed after Close.
func (s *Stream) C() <-chan api.TickEvent { return s.out }

// Pending returns the number of buffered ticks not yet handed to C.
func (s *Stream) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Length()
}

// Close unsubscribes and discards buffered ticks. The wrapped timer is
// left running.
func (s *Stream) Close() {
	s.once.Do(func() {
		s.unsubscribe()
		close(s.done)
		s.mu.Lock()
		s.buf = queue.New()
		s.mu.Unlock()
	})
}
