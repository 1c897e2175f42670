// Package benchmarks
// Author: momentics <momentics@gmail.com>
//
// Performance benchmarks for hioload-timer components.

package benchmarks

import (
	"testing"
	"time"

	"github.com/momentics/hioload-timer/api"
	"github.com/momentics/hioload-timer/callback"
	"github.com/momentics/hioload-timer/clock"
	"github.com/momentics/hioload-timer/internal/logs"
	"github.com/momentics/hioload-timer/internal/notify"
	"github.com/momentics/hioload-timer/native/nativetest"
	"github.com/momentics/hioload-timer/stream"
	"github.com/momentics/hioload-timer/tickwait"
)

// BenchmarkMonotonicClock measures one clock read, the unit of spin cost.
func BenchmarkMonotonicClock(b *testing.B) {
	var sink int64
	for i := 0; i < b.N; i++ {
		sink += clock.Default.NowMicros()
	}
	_ = sink
}

// BenchmarkSubscriberDelivery measures fan-out to eight handlers.
func BenchmarkSubscriberDelivery(b *testing.B) {
	list := notify.NewList(nil)
	for i := 0; i < 8; i++ {
		list.Add(func(api.TickEvent) {})
	}
	ev := api.TickEvent{Sequence: 1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		list.Deliver(ev)
	}
}

// BenchmarkSubscribeChurn measures subscribe and unsubscribe while another
// goroutine keeps delivering.
func BenchmarkSubscribeChurn(b *testing.B) {
	list := notify.NewList(nil)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				list.Deliver(api.TickEvent{})
			}
		}
	}()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		remove := list.Add(func(api.TickEvent) {})
		remove()
	}
}

func fakeTimer(b *testing.B) (*callback.Timer, *nativetest.Service) {
	svc := nativetest.New()
	tm := callback.New(svc, callback.WithLogger(logs.Discard()))
	if err := tm.Start(); err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = tm.Dispose() })
	return tm, svc
}

// BenchmarkCallbackTrampoline measures one native callback through the
// gate, stats and one handler.
func BenchmarkCallbackTrampoline(b *testing.B) {
	tm, svc := fakeTimer(b)
	_, _ = tm.Subscribe(func(api.TickEvent) {})
	reg := svc.Last()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.Fire()
	}
}

// BenchmarkTickWaitSignal measures a fire followed by a consuming wait.
func BenchmarkTickWaitSignal(b *testing.B) {
	tm, svc := fakeTimer(b)
	w, err := tickwait.New(tm)
	if err != nil {
		b.Fatal(err)
	}
	defer w.Close()
	reg := svc.Last()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.Fire()
		if ok, _ := w.WaitForTick(time.Second); !ok {
			b.Fatal("missed tick")
		}
	}
}

// BenchmarkStreamThroughput measures buffering and draining ticks.
func BenchmarkStreamThroughput(b *testing.B) {
	tm, svc := fakeTimer(b)
	s, err := stream.New(tm)
	if err != nil {
		b.Fatal(err)
	}
	defer s.Close()
	reg := svc.Last()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < b.N; i++ {
			<-s.C()
		}
	}()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.Fire()
	}
	<-done
}
