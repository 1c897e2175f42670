//go:build windows
// +build windows

// File: facade/backends_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package facade

import (
	"github.com/momentics/hioload-timer/api"
	"github.com/momentics/hioload-timer/native"
)

func init() {
	register(BackendTimerQueue, func(cfg *Config) api.Timer {
		return newCallback(native.NewTimerQueue(), cfg)
	})
	register(BackendWinMM, func(cfg *Config) api.Timer {
		return newCallback(native.NewWinMM().WithResolution(cfg.Resolution), cfg)
	})
}
