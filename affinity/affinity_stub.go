//go:build !linux && !windows
// +build !linux,!windows

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package affinity

import "github.com/momentics/hioload-timer/api"

func setAffinityPlatform(cpuID int) error {
	return api.ErrPlatformUnsupported
}

func raisePriorityPlatform() error {
	return api.ErrPlatformUnsupported
}
