// File: native/goticker.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package native

import (
	"time"
)

// GoTickerName identifies the portable service.
const GoTickerName = "goticker"

// GoTicker schedules callbacks with the Go runtime timer. It is available
// on every platform; resolution follows the runtime netpoller, typically
// around one millisecond. Callbacks of one registration never overlap and
// slow callbacks drop ticks.
type GoTicker struct {
	reg *registry
}

var _ Service = (*GoTicker)(nil)

// NewGoTicker returns the portable service.
func NewGoTicker() *GoTicker {
	return &GoTicker{reg: newRegistry(GoTickerName)}
}

func (g *GoTicker) Name() string { return GoTickerName }

func (g *GoTicker) Register(interval time.Duration, fire func()) (Registration, error) {
	if err := checkRegister(GoTickerName, interval, fire); err != nil {
		return nil, err
	}
	r := newLoopReg(g.reg.add(fire))
	go g.loop(r, interval)
	return r, nil
}

func (g *GoTicker) loop(r *loopReg, interval time.Duration) {
	defer close(r.done)
	tk := time.NewTicker(interval)
	defer tk.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-tk.C:
			r.invoke()
		}
	}
}

func (g *GoTicker) Cancel(reg Registration, wait bool) error {
	r, ok := reg.(*loopReg)
	if !ok || r.service != GoTickerName {
		return foreignRegistration(GoTickerName, reg)
	}
	return cancelLoop(g.reg, r, wait)
}

// BeginHighResolution is a no-op; the runtime manages timer resolution.
func (g *GoTicker) BeginHighResolution() error { return nil }

// EndHighResolution is a no-op.
func (g *GoTicker) EndHighResolution() {}
