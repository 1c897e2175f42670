//go:build windows
// +build windows

// File: native/highres_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// System timer resolution requests shared by the Windows services.

package native

import (
	"fmt"

	"golang.org/x/sys/windows"
)

const timerrNoError = 0

var (
	modwinmm            = windows.NewLazySystemDLL("winmm.dll")
	procTimeBeginPeriod = modwinmm.NewProc("timeBeginPeriod")
	procTimeEndPeriod   = modwinmm.NewProc("timeEndPeriod")
	procTimeSetEvent    = modwinmm.NewProc("timeSetEvent")
	procTimeKillEvent   = modwinmm.NewProc("timeKillEvent")
)

// beginPeriod requests a 1 ms system timer period.
func beginPeriod() error {
	if ret, _, _ := procTimeBeginPeriod.Call(1); ret != timerrNoError {
		return fmt.Errorf("winmm: timeBeginPeriod(1) returned %d", ret)
	}
	return nil
}

func endPeriod() {
	procTimeEndPeriod.Call(1)
}
