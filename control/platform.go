// control/platform.go
// Author: momentics <momentics@gmail.com>
//
// Platform probes shared by every OS.

package control

import "runtime"

// RegisterPlatformProbes sets generic platform probes plus the
// OS-specific ones from platform_<os>.go.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.os", func() any {
		return runtime.GOOS
	})
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	registerOSProbes(dp)
}
