// File: api/event.go
// Package api defines tick notification and lifecycle types.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "fmt"

// TickEvent is produced once per fire.
//
// The spin engine fills every field. OS callback backends only know that a
// fire happened: Telemetry is false and LateByMicros/HandlerMicros are zero.
type TickEvent struct {
	// Sequence starts at 1 and counts every scheduled fire of a run,
	// including suppressed ones.
	Sequence uint64
	// ElapsedMicros is the time of the fire since Start.
	ElapsedMicros int64
	// LateByMicros is how far the fire trailed its scheduled point, never negative.
	LateByMicros int64
	// HandlerMicros is the time spent in the previous notification's handlers
	// plus scheduling overhead.
	HandlerMicros int64
	// Telemetry reports whether the drift fields are meaningful.
	Telemetry bool
}

func (ev TickEvent) String() string {
	if !ev.Telemetry {
		return fmt.Sprintf("tick #%d at %dus", ev.Sequence, ev.ElapsedMicros)
	}
	return fmt.Sprintf("tick #%d at %dus late=%dus exec=%dus",
		ev.Sequence, ev.ElapsedMicros, ev.LateByMicros, ev.HandlerMicros)
}

// Stats is a point-in-time snapshot of a timer's delivery counters.
type Stats struct {
	Delivered    uint64
	Suppressed   uint64
	MaxLateMicro int64
	LastSequence uint64
}

// State is the lifecycle state of a timer.
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateStopped
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}
