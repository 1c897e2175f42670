// File: native/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package native abstracts the OS timer services that drive callback
// backends: Windows timer queues and multimedia timers, a Linux
// nanosleep hybrid loop, and a portable service built on Go runtime timers.
//
// Every service invokes the registered function from a context it owns.
// Cancel reports api.ErrCancelPending when a non-blocking cancel found a
// callback still executing; the caller retries with wait set.
package native
