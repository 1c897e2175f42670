//go:build windows
// +build windows

// control/platform_windows.go
// Author: momentics <momentics@gmail.com>
//
// Windows-specific probe: multimedia timer period range from timeGetDevCaps.

package control

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var procTimeGetDevCaps = windows.NewLazySystemDLL("winmm.dll").NewProc("timeGetDevCaps")

type timeCaps struct {
	periodMin uint32
	periodMax uint32
}

func registerOSProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.timer_period_ms", func() any {
		var caps timeCaps
		ret, _, _ := procTimeGetDevCaps.Call(uintptr(unsafe.Pointer(&caps)), unsafe.Sizeof(caps))
		if ret != 0 {
			return "unavailable"
		}
		return [2]uint32{caps.periodMin, caps.periodMax}
	})
}
