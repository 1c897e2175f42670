// File: facade/facade.go
// Unified entry point for hioload-timer.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The facade selects a backend for the host operating system, builds timers
// by backend name from an immutable Config and offers the bounded Abort used
// in place of forced thread termination.

package facade

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-timer/api"
	"github.com/momentics/hioload-timer/callback"
	"github.com/momentics/hioload-timer/control"
	"github.com/momentics/hioload-timer/native"
	"github.com/momentics/hioload-timer/spin"
)

// Backend names accepted by New.
const (
	BackendSpin       = spin.BackendName
	BackendNanosleep  = "nanosleep"
	BackendTimerQueue = "timerqueue"
	BackendWinMM      = "winmm"
	BackendGoTicker   = native.GoTickerName
)

var knownBackends = map[string]bool{
	BackendSpin:       true,
	BackendNanosleep:  true,
	BackendTimerQueue: true,
	BackendWinMM:      true,
	BackendGoTicker:   true,
}

// Config holds parameters applied when a timer is built.
// Fields irrelevant to the chosen backend are ignored.
type Config struct {
	Name          string        // Instance name; generated when empty
	Interval      time.Duration // Initial interval
	LateThreshold time.Duration // Spin only: suppress ticks this late; 0 disables
	CPU           int           // Spin only: logical CPU for the worker; -1 disables pinning
	PriorityBoost bool          // Spin only: raise worker thread priority
	SpinMargin    time.Duration // Nanosleep only: spin before each deadline
	Resolution    time.Duration // WinMM only: event resolution; 0 is highest

	Logger logrus.FieldLogger   // Defaults to the package logger
	Probes *control.DebugProbes // Optional stats probe registry
	Clock  api.Clock            // Defaults to the monotonic clock
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	return &Config{
		Interval:      api.DefaultInterval,
		CPU:           -1,
		PriorityBoost: true,
		SpinMargin:    100 * time.Microsecond,
	}
}

type factory func(cfg *Config) api.Timer

var factories = map[string]factory{
	BackendSpin:     newSpin,
	BackendGoTicker: newGoTicker,
}

// register adds a backend available on this host.
func register(name string, f factory) {
	factories[name] = f
}

func newSpin(cfg *Config) api.Timer {
	return spin.New(
		spin.WithName(cfg.Name),
		spin.WithLogger(cfg.Logger),
		spin.WithProbes(cfg.Probes),
		spin.WithClock(cfg.Clock),
		spin.WithInterval(cfg.Interval),
		spin.WithLateThreshold(cfg.LateThreshold),
		spin.WithCPU(cfg.CPU),
		spin.WithPriorityBoost(cfg.PriorityBoost),
	)
}

func newGoTicker(cfg *Config) api.Timer {
	return newCallback(native.NewGoTicker(), cfg)
}

func newCallback(svc native.Service, cfg *Config) api.Timer {
	return callback.New(svc,
		callback.WithName(cfg.Name),
		callback.WithLogger(cfg.Logger),
		callback.WithProbes(cfg.Probes),
		callback.WithClock(cfg.Clock),
		callback.WithInterval(cfg.Interval),
	)
}

// Select returns the default backend for the operating system goos:
// nanosleep on Linux, timerqueue on Windows. Other systems fail with
// PlatformUnsupported; the spin engine is never chosen implicitly.
func Select(goos string) (string, error) {
	switch goos {
	case "linux":
		return BackendNanosleep, nil
	case "windows":
		return BackendTimerQueue, nil
	}
	return "", api.NewError(api.ErrCodePlatformUnsupported, fmt.Sprintf("no timer backend for operating system %q", goos)).
		WithContext("os", goos)
}

// Create builds the default timer for the host.
func Create(cfg *Config) (api.Timer, error) {
	return CreateFor(hostOS, cfg)
}

// CreateFor builds the default timer for goos.
func CreateFor(goos string, cfg *Config) (api.Timer, error) {
	name, err := Select(goos)
	if err != nil {
		return nil, err
	}
	return New(name, cfg)
}

// New builds a timer of the named backend. Unknown names fail with
// InvalidArgument; backends that exist only on other systems fail with
// PlatformUnsupported. A zero Interval selects api.DefaultInterval.
func New(backend string, cfg *Config) (api.Timer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	f, ok := factories[backend]
	if !ok {
		if knownBackends[backend] {
			return nil, api.NewError(api.ErrCodePlatformUnsupported, "backend not available on this system").
				WithContext("backend", backend).
				WithContext("os", hostOS)
		}
		return nil, api.NewError(api.ErrCodeInvalidArgument, "unknown backend").
			WithContext("backend", backend)
	}
	if cfg.Interval != 0 && cfg.Interval < time.Microsecond {
		return nil, api.InvalidInterval(cfg.Name, cfg.Interval)
	}
	return f(cfg), nil
}

// Backends lists the backends available on this host.
func Backends() []string {
	out := make([]string, 0, len(factories))
	for name := range factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Abort stops t and waits at most timeout for it to quiesce. It reports
// ErrOperationTimeout instead of terminating anything when the deadline
// passes; the worker keeps running until it observes the stop.
func Abort(t api.Timer, timeout time.Duration) error {
	ok, err := t.StopAndWait(timeout)
	if err != nil {
		return err
	}
	if !ok {
		return api.NewError(api.ErrCodeTimeout, "timer did not quiesce").
			WithContext("timer", t.Name()).
			WithContext("timeout", timeout)
	}
	return nil
}
