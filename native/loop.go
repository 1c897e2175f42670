// File: native/loop.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package native

import (
	"sync"

	"github.com/momentics/hioload-timer/api"
)

// loopReg is a registration served by a private goroutine.
type loopReg struct {
	*slot
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func newLoopReg(s *slot) *loopReg {
	return &loopReg{slot: s, stop: make(chan struct{}), done: make(chan struct{})}
}

// cancelLoop closes the slot and signals the loop. With wait set it joins
// the goroutine, which also covers a callback still executing.
func cancelLoop(reg *registry, r *loopReg, wait bool) error {
	r.close()
	r.once.Do(func() { close(r.stop) })
	if !wait {
		if r.busy() {
			return api.ErrCancelPending
		}
		reg.remove(r.slot)
		return nil
	}
	<-r.done
	reg.remove(r.slot)
	return nil
}
