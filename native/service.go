// File: native/service.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package native

import (
	"fmt"
	"time"
)

// Registration identifies one periodic callback registered with a Service.
type Registration interface {
	fmt.Stringer
	ID() uint64
}

// Service is a native periodic timer facility.
type Service interface {
	// Name identifies the service; callback timers report it as their backend.
	Name() string

	// Register arranges for fire to run every interval until cancelled.
	// The service keeps fire reachable for the lifetime of the registration.
	Register(interval time.Duration, fire func()) (Registration, error)

	// Cancel stops further callbacks. With wait unset it returns
	// api.ErrCancelPending when a callback is still executing. With wait set
	// it returns only after in-flight callbacks finished. Cancelling an
	// already cancelled registration is a no-op.
	Cancel(reg Registration, wait bool) error

	// BeginHighResolution and EndHighResolution bracket the active lifetime
	// of a registration on platforms that need an explicit resolution request.
	BeginHighResolution() error
	EndHighResolution()
}

// Millis rounds d up to whole milliseconds, never below one. Services that
// only schedule in milliseconds use it to convert intervals.
func Millis(d time.Duration) uint32 {
	ms := (d + time.Millisecond - 1) / time.Millisecond
	if ms < 1 {
		ms = 1
	}
	if ms > 1<<32-1 {
		ms = 1<<32 - 1
	}
	return uint32(ms)
}
