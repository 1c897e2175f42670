// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for pinning and prioritizing the calling OS thread.
// Platform-specific implementations are located in separate files
// (affinity_linux.go, affinity_windows.go, affinity_stub.go) guarded by build tags.
//
// Callers must hold runtime.LockOSThread for the settings to stay attached
// to the goroutine that requested them.

package affinity

import (
	"fmt"
	"runtime"

	"github.com/momentics/hioload-timer/api"
)

// SetAffinity pins the current OS thread to a given logical CPU on supported
// platforms. On unsupported platforms it returns an error wrapping api.ErrPlatformUnsupported.
func SetAffinity(cpuID int) error {
	if cpuID < 0 || cpuID >= runtime.NumCPU() {
		return api.NewError(api.ErrCodeInvalidArgument, "cpu index out of range").
			WithContext("cpu", cpuID).
			WithContext("cpus", runtime.NumCPU())
	}
	if err := setAffinityPlatform(cpuID); err != nil {
		return fmt.Errorf("affinity: pin to cpu %d: %w", cpuID, err)
	}
	return nil
}

// RaisePriority asks the OS to schedule the current thread ahead of normal
// threads. It usually needs elevated privileges on Linux; failures are
// expected and should be treated as advisory.
func RaisePriority() error {
	if err := raisePriorityPlatform(); err != nil {
		return fmt.Errorf("affinity: raise priority: %w", err)
	}
	return nil
}
