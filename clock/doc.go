// File: clock/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package clock provides the monotonic microsecond time source used by the
// timer engines, a stopwatch on top of it, and a deterministic stepping
// clock for tests.
//
// The default source reads the runtime's monotonic clock through
// goarista/monotime, which avoids constructing time.Time values in the
// spin engine's hot loop.
package clock
