//go:build windows
// +build windows

// File: affinity/affinity_windows.go
// Author: momentics <momentics@gmail.com>
//
// Windows implementation via SetThreadAffinityMask and SetThreadPriority.

package affinity

import (
	"golang.org/x/sys/windows"
)

const threadPriorityHighest = 2

var (
	modkernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadAffinityMask = modkernel32.NewProc("SetThreadAffinityMask")
	procSetThreadPriority     = modkernel32.NewProc("SetThreadPriority")
)

// setAffinityPlatform sets thread affinity to a given CPU for Windows.
func setAffinityPlatform(cpuID int) error {
	if cpuID >= 64 {
		return windows.ERROR_INVALID_PARAMETER
	}
	mask := uintptr(1) << uint(cpuID)
	ret, _, err := procSetThreadAffinityMask.Call(uintptr(windows.CurrentThread()), mask)
	if ret == 0 {
		return err
	}
	return nil
}

func raisePriorityPlatform() error {
	ret, _, err := procSetThreadPriority.Call(uintptr(windows.CurrentThread()), threadPriorityHighest)
	if ret == 0 {
		return err
	}
	return nil
}
