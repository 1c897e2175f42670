package native

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/hioload-timer/api"
)

type otherReg struct{}

func (otherReg) ID() uint64     { return 1 }
func (otherReg) String() string { return "other#1" }

func TestGoTickerFiresUntilCancelled(t *testing.T) {
	svc := NewGoTicker()
	var n atomic.Int32
	reg, err := svc.Register(time.Millisecond, func() { n.Add(1) })
	if err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for n.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if n.Load() < 3 {
		t.Fatalf("fired %d times in 2s", n.Load())
	}
	if err := svc.Cancel(reg, true); err != nil {
		t.Fatal(err)
	}
	after := n.Load()
	time.Sleep(10 * time.Millisecond)
	if n.Load() != after {
		t.Fatal("callback ran after a blocking cancel")
	}
	if err := svc.Cancel(reg, true); err != nil {
		t.Fatalf("second cancel = %v", err)
	}
	if svc.reg.len() != 0 {
		t.Fatal("slot left in registry")
	}
}

func TestGoTickerCancelPendingFromCallback(t *testing.T) {
	svc := NewGoTicker()
	result := make(chan error, 1)
	var reg Registration
	regReady := make(chan struct{})
	var once atomic.Bool
	reg, err := svc.Register(time.Millisecond, func() {
		<-regReady
		if once.CompareAndSwap(false, true) {
			result <- svc.Cancel(reg, false)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	close(regReady)
	select {
	case err := <-result:
		if !errors.Is(err, api.ErrCancelPending) {
			t.Fatalf("cancel from callback = %v, want ErrCancelPending", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback never ran")
	}
	if err := svc.Cancel(reg, true); err != nil {
		t.Fatalf("blocking retry = %v", err)
	}
}

func TestGoTickerRejectsInvalidInput(t *testing.T) {
	svc := NewGoTicker()
	if _, err := svc.Register(0, func() {}); !errors.Is(err, api.ErrInvalidArgument) {
		t.Errorf("zero interval = %v", err)
	}
	if _, err := svc.Register(time.Millisecond, nil); !errors.Is(err, api.ErrInvalidArgument) {
		t.Errorf("nil callback = %v", err)
	}
	if err := svc.Cancel(otherReg{}, false); !errors.Is(err, api.ErrInvalidArgument) {
		t.Errorf("foreign registration = %v", err)
	}
}
