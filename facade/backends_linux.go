//go:build linux
// +build linux

// File: facade/backends_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package facade

import (
	"github.com/momentics/hioload-timer/api"
	"github.com/momentics/hioload-timer/native"
)

func init() {
	register(BackendNanosleep, func(cfg *Config) api.Timer {
		return newCallback(native.NewNanosleep().WithSpinMargin(cfg.SpinMargin), cfg)
	})
}
