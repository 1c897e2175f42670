// File: internal/notify/notify.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Ordered subscriber list for tick delivery. Writers serialize on a mutex
// and publish a fresh slice; the delivering context reads the current slice
// without taking the lock, so no lock is ever held while handlers run.

package notify

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-timer/api"
)

// PanicFunc receives a recovered handler panic and its stack.
type PanicFunc func(value any, stack []byte)

type entry struct {
	id uint64
	h  api.Handler
}

// List is a copy-on-write list of handlers invoked in registration order.
type List struct {
	mu       sync.Mutex
	nextID   uint64
	handlers atomic.Value // []entry
	onPanic  PanicFunc
}

// NewList creates an empty list. onPanic may be nil, in which case handler
// panics are recovered silently.
func NewList(onPanic PanicFunc) *List {
	l := &List{onPanic: onPanic}
	l.handlers.Store([]entry{})
	return l
}

// Add appends h and returns a function removing it. Removal is idempotent.
func (l *List) Add(h api.Handler) func() {
	if h == nil {
		return func() {}
	}
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	old := l.handlers.Load().([]entry)
	next := make([]entry, len(old), len(old)+1)
	copy(next, old)
	l.handlers.Store(append(next, entry{id: id, h: h}))
	l.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { l.remove(id) }) }
}

func (l *List) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	old := l.handlers.Load().([]entry)
	next := make([]entry, 0, len(old))
	for _, e := range old {
		if e.id != id {
			next = append(next, e)
		}
	}
	l.handlers.Store(next)
}

// Clear drops every handler.
func (l *List) Clear() {
	l.mu.Lock()
	l.handlers.Store([]entry{})
	l.mu.Unlock()
}

// Len returns the number of registered handlers.
func (l *List) Len() int {
	return len(l.handlers.Load().([]entry))
}

// Deliver invokes every handler with ev, in registration order, on the
// calling goroutine. A panicking handler is recovered and reported; the
// remaining handlers still run.
func (l *List) Deliver(ev api.TickEvent) {
	for _, e := range l.handlers.Load().([]entry) {
		l.call(e.h, ev)
	}
}

func (l *List) call(h api.Handler, ev api.TickEvent) {
	defer func() {
		if p := recover(); p != nil && l.onPanic != nil {
			l.onPanic(p, debug.Stack())
		}
	}()
	h(ev)
}

// PanicError formats a recovered panic value.
func PanicError(value any) error {
	if err, ok := value.(error); ok {
		return fmt.Errorf("handler panic: %w", err)
	}
	return fmt.Errorf("handler panic: %v", value)
}
