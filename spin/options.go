// File: spin/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package spin

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-timer/api"
	"github.com/momentics/hioload-timer/control"
	"github.com/momentics/hioload-timer/internal/core"
)

type config struct {
	core.Config
	cpu           int
	raise         bool
	lateThreshold time.Duration
}

// Option configures a spin timer.
type Option func(*config)

func defaultConfig() config {
	return config{cpu: -1, raise: true}
}

// WithName sets the instance name used in logs and probes.
func WithName(name string) Option {
	return func(c *config) { c.Name = name }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) { c.Logger = l }
}

// WithProbes registers the timer's stats under "timer.<name>".
func WithProbes(p *control.DebugProbes) Option {
	return func(c *config) { c.Probes = p }
}

// WithClock replaces the monotonic clock.
func WithClock(clk api.Clock) Option {
	return func(c *config) { c.Clock = clk }
}

// WithInterval sets the initial interval. Invalid values keep the default.
func WithInterval(d time.Duration) Option {
	return func(c *config) { c.Interval = d }
}

// WithLateThreshold enables late-tick suppression. Values below one
// microsecond leave suppression disabled.
func WithLateThreshold(d time.Duration) Option {
	return func(c *config) { c.lateThreshold = d }
}

// WithCPU pins the worker thread to a logical CPU. Negative disables pinning.
func WithCPU(cpu int) Option {
	return func(c *config) { c.cpu = cpu }
}

// WithPriorityBoost controls whether the worker asks for a raised OS
// priority. Enabled by default.
func WithPriorityBoost(on bool) Option {
	return func(c *config) { c.raise = on }
}
