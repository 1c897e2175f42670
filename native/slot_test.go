package native

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRegistryDispatch(t *testing.T) {
	reg := newRegistry("test")
	var a, b atomic.Int32
	sa := reg.add(func() { a.Add(1) })
	sb := reg.add(func() { b.Add(1) })
	if sa.ID() == sb.ID() {
		t.Fatal("duplicate slot ids")
	}
	reg.dispatch(sa.ID())
	reg.dispatch(sa.ID())
	reg.dispatch(sb.ID())
	reg.dispatch(999)
	if a.Load() != 2 || b.Load() != 1 {
		t.Fatalf("dispatch counts = %d, %d", a.Load(), b.Load())
	}
	reg.remove(sa)
	reg.dispatch(sa.ID())
	if a.Load() != 2 {
		t.Fatal("removed slot still dispatched")
	}
	if reg.len() != 1 {
		t.Fatalf("registry holds %d slots, want 1", reg.len())
	}
	if got := sb.String(); got != "test#2" {
		t.Fatalf("String() = %q", got)
	}
}

func TestSlotCloseStopsInvocations(t *testing.T) {
	var n atomic.Int32
	s := &slot{fire: func() { n.Add(1) }}
	s.invoke()
	if !s.close() {
		t.Fatal("first close reported false")
	}
	if s.close() {
		t.Fatal("second close reported true")
	}
	s.invoke()
	if n.Load() != 1 {
		t.Fatalf("fired %d times, want 1", n.Load())
	}
}

func TestSlotDrainWaitsForCallback(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var finished atomic.Bool
	s := &slot{fire: func() {
		close(entered)
		<-release
		finished.Store(true)
	}}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.invoke()
	}()
	<-entered
	s.close()
	if !s.busy() {
		t.Fatal("slot not busy with a running callback")
	}
	go func() {
		time.Sleep(2 * time.Millisecond)
		close(release)
	}()
	s.drain()
	if !finished.Load() {
		t.Fatal("drain returned before the callback finished")
	}
	wg.Wait()
}

func TestMillis(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want uint32
	}{
		{time.Microsecond, 1},
		{time.Millisecond, 1},
		{1500 * time.Microsecond, 2},
		{5 * time.Millisecond, 5},
		{0, 1},
	}
	for _, c := range cases {
		if got := Millis(c.in); got != c.want {
			t.Errorf("Millis(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}
