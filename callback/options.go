// File: callback/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package callback

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-timer/api"
	"github.com/momentics/hioload-timer/control"
	"github.com/momentics/hioload-timer/internal/core"
)

// Option configures a callback timer.
type Option func(*core.Config)

// WithName sets the instance name used in logs and probes.
func WithName(name string) Option {
	return func(c *core.Config) { c.Name = name }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *core.Config) { c.Logger = l }
}

// WithProbes registers the timer's stats under "timer.<name>".
func WithProbes(p *control.DebugProbes) Option {
	return func(c *core.Config) { c.Probes = p }
}

// WithClock sets the clock used for ElapsedMicros.
func WithClock(clk api.Clock) Option {
	return func(c *core.Config) { c.Clock = clk }
}

// WithInterval sets the initial interval. Invalid values keep the default.
func WithInterval(d time.Duration) Option {
	return func(c *core.Config) { c.Interval = d }
}
