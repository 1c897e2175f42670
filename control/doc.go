// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics and debug introspection layer for hioload-timer.
//
// Provides concurrent-safe state handling primitives including:
//   - Metrics registry with snapshot reads
//   - Debug probes that timers register their delivery statistics under
//   - Platform probes reporting clock and timer resolution
//
// This package is cross-platform and build-tag-partitioned as needed.
package control
