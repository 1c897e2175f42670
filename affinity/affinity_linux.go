//go:build linux
// +build linux

// File: affinity/affinity_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux implementation via sched_setaffinity(2) and setpriority(2) on the
// calling thread id.

package affinity

import "golang.org/x/sys/unix"

// highNice is the nice value requested for timer worker threads.
const highNice = -10

// setAffinityPlatform sets thread affinity to a given CPU for Linux.
func setAffinityPlatform(cpuID int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	// pid 0 addresses the calling thread.
	return unix.SchedSetaffinity(0, &set)
}

func raisePriorityPlatform() error {
	return unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), highNice)
}
