package tickwait_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/momentics/hioload-timer/api"
	"github.com/momentics/hioload-timer/callback"
	"github.com/momentics/hioload-timer/internal/logs"
	"github.com/momentics/hioload-timer/native/nativetest"
	"github.com/momentics/hioload-timer/spin"
	"github.com/momentics/hioload-timer/tickwait"
)

func newFakeTimer(t *testing.T) (*callback.Timer, *nativetest.Service) {
	t.Helper()
	svc := nativetest.New()
	tm := callback.New(svc, callback.WithLogger(logs.Discard()))
	t.Cleanup(func() { _ = tm.Dispose() })
	return tm, svc
}

func TestWaitOnIdleTimerFails(t *testing.T) {
	tm, _ := newFakeTimer(t)
	w, err := tickwait.New(tm)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if _, err := w.WaitForTick(api.WaitForever); !errors.Is(err, api.ErrInvalidState) {
		t.Fatalf("WaitForTick on a created timer = %v, want ErrInvalidState", err)
	}
	if err := w.Wait(context.Background()); !errors.Is(err, api.ErrInvalidState) {
		t.Fatalf("Wait on a created timer = %v", err)
	}
}

func TestTicksCoalesce(t *testing.T) {
	tm, svc := newFakeTimer(t)
	w, _ := tickwait.New(tm)
	defer w.Close()
	_ = tm.Start()

	for i := 0; i < 5; i++ {
		svc.Fire()
	}
	if !w.Pending() {
		t.Fatal("no pending signal after ticks")
	}
	if ok, err := w.WaitForTick(0); !ok || err != nil {
		t.Fatalf("first wait = %v, %v", ok, err)
	}
	if ok, err := w.WaitForTick(0); ok || err != nil {
		t.Fatalf("second wait = %v, %v, want coalesced ticks consumed", ok, err)
	}
	if ok, _ := w.WaitForTick(2 * time.Millisecond); ok {
		t.Fatal("wait succeeded without a tick")
	}
}

func TestOneSignalPerTickWhenFaster(t *testing.T) {
	tm, svc := newFakeTimer(t)
	w, _ := tickwait.New(tm)
	defer w.Close()
	_ = tm.Start()

	for i := 0; i < 10; i++ {
		svc.Fire()
		if ok, err := w.WaitForTick(time.Second); !ok || err != nil {
			t.Fatalf("wait %d = %v, %v", i, ok, err)
		}
		if w.Pending() {
			t.Fatalf("extra signal after wait %d", i)
		}
	}
}

func TestWaitContextCancel(t *testing.T) {
	tm, _ := newFakeTimer(t)
	w, _ := tickwait.New(tm)
	defer w.Close()
	_ = tm.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Millisecond)
	defer cancel()
	if err := w.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait = %v, want deadline exceeded", err)
	}
}

func TestCloseUnsubscribesAndWakes(t *testing.T) {
	tm, svc := newFakeTimer(t)
	w, _ := tickwait.New(tm)
	_ = tm.Start()

	woke := make(chan bool)
	go func() {
		ok, _ := w.WaitForTick(api.WaitForever)
		woke <- ok
	}()
	time.Sleep(time.Millisecond)
	w.Close()
	select {
	case ok := <-woke:
		if ok {
			t.Fatal("closed waiter reported a tick")
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not wake the waiter")
	}
	w.Close()

	svc.Fire()
	if w.Pending() {
		t.Fatal("closed waiter still subscribed")
	}
	if _, err := w.WaitForTick(0); !errors.Is(err, api.ErrInvalidState) {
		t.Fatalf("wait after Close = %v", err)
	}
	if !tm.IsRunning() {
		t.Fatal("Close disposed the wrapped timer")
	}
}

func TestNewRejectsDisposedTimer(t *testing.T) {
	tm, _ := newFakeTimer(t)
	_ = tm.Dispose()
	if _, err := tickwait.New(tm); !errors.Is(err, api.ErrInvalidState) {
		t.Fatalf("New on a disposed timer = %v", err)
	}
	if _, err := tickwait.New(nil); !errors.Is(err, api.ErrInvalidArgument) {
		t.Fatalf("New(nil) = %v", err)
	}
}

func TestWaitLoopRealTime(t *testing.T) {
	if testing.Short() {
		t.Skip("runs for two seconds")
	}
	tm := spin.New(spin.WithLogger(logs.Discard()), spin.WithInterval(5*time.Millisecond))
	defer tm.Dispose()
	w, err := tickwait.New(tm)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := tm.Start(); err != nil {
		t.Fatal(err)
	}
	begin := time.Now()
	for i := 0; i < 400; i++ {
		ok, err := w.WaitForTick(time.Second)
		if err != nil || !ok {
			t.Fatalf("wait %d = %v, %v", i, ok, err)
		}
	}
	took := time.Since(begin)
	if took < 1900*time.Millisecond || took > 2200*time.Millisecond {
		t.Fatalf("400 waits at 5ms took %v, want ~2s", took)
	}
}
