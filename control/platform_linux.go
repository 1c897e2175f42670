//go:build linux
// +build linux

// control/platform_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux-specific probe: resolution of CLOCK_MONOTONIC.

package control

import "golang.org/x/sys/unix"

func registerOSProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.clock_resolution_ns", func() any {
		var ts unix.Timespec
		if err := unix.ClockGetres(unix.CLOCK_MONOTONIC, &ts); err != nil {
			return err.Error()
		}
		return ts.Nano()
	})
}
