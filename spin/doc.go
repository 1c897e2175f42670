// File: spin/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package spin implements a self-correcting software timer.
//
// A dedicated, locked OS thread busy-waits against the monotonic clock
// instead of sleeping, which sidesteps scheduler resolution (1-15ms on
// common systems) at the cost of one fully used core while running.
//
// Fire times accumulate from the start of the run: the n-th scheduled point
// is the sum of the intervals read so far, not the previous fire time plus
// one interval. A handler that overruns delays only the following ticks'
// delivery, which then report a large LateByMicros and catch up.
//
// An optional late threshold suppresses ticks whose lateness meets or
// exceeds it. Suppressed ticks still consume a sequence number.
package spin
