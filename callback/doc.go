// File: callback/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package callback adapts a native.Service to api.Timer.
//
// The native service owns the thread that runs callbacks. A trampoline
// counts deliveries in flight and drops callbacks that arrive after Stop,
// so StopAndWait and Dispose can guarantee that no handler runs after
// they return. The interval is fixed at registration: SetInterval on a
// running timer takes effect on the next Start.
package callback
