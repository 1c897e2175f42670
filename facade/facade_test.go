package facade_test

import (
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/momentics/hioload-timer/api"
	"github.com/momentics/hioload-timer/control"
	"github.com/momentics/hioload-timer/facade"
	"github.com/momentics/hioload-timer/internal/logs"
)

func quietConfig() *facade.Config {
	cfg := facade.DefaultConfig()
	cfg.Logger = logs.Discard()
	cfg.PriorityBoost = false
	return cfg
}

func TestSelect(t *testing.T) {
	cases := []struct {
		goos string
		want string
		code api.ErrorCode
	}{
		{"linux", facade.BackendNanosleep, api.ErrCodeOK},
		{"windows", facade.BackendTimerQueue, api.ErrCodeOK},
		{"darwin", "", api.ErrCodePlatformUnsupported},
		{"plan9", "", api.ErrCodePlatformUnsupported},
		{"", "", api.ErrCodePlatformUnsupported},
	}
	for _, c := range cases {
		got, err := facade.Select(c.goos)
		if got != c.want || api.CodeOf(err) != c.code {
			t.Errorf("Select(%q) = %q, %v", c.goos, got, err)
		}
		if err != nil && !strings.Contains(err.Error(), `"`+c.goos+`"`) {
			t.Errorf("error %q does not name the OS %q", err, c.goos)
		}
	}
}

func TestCreateForUnsupportedOS(t *testing.T) {
	tm, err := facade.CreateFor("plan9", quietConfig())
	if tm != nil || !errors.Is(err, api.ErrPlatformUnsupported) {
		t.Fatalf("CreateFor(plan9) = %v, %v", tm, err)
	}
	if !strings.Contains(err.Error(), "plan9") {
		t.Fatalf("error %q does not name the OS", err)
	}
}

func TestCreateOnHost(t *testing.T) {
	tm, err := facade.Create(quietConfig())
	switch runtime.GOOS {
	case "linux", "windows":
		if err != nil {
			t.Fatal(err)
		}
		defer tm.Dispose()
		want, _ := facade.Select(runtime.GOOS)
		if tm.Backend() != want {
			t.Fatalf("backend = %q, want %q", tm.Backend(), want)
		}
	default:
		if !errors.Is(err, api.ErrPlatformUnsupported) {
			t.Fatalf("Create = %v", err)
		}
	}
}

func TestNewByName(t *testing.T) {
	for _, name := range facade.Backends() {
		tm, err := facade.New(name, quietConfig())
		if err != nil {
			t.Fatalf("New(%q) = %v", name, err)
		}
		if tm.Backend() != name {
			t.Errorf("New(%q).Backend() = %q", name, tm.Backend())
		}
		if tm.Interval() != api.DefaultInterval {
			t.Errorf("New(%q) interval = %v", name, tm.Interval())
		}
		if err := tm.Dispose(); err != nil {
			t.Errorf("Dispose(%q) = %v", name, err)
		}
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := facade.New("sundial", nil); !errors.Is(err, api.ErrInvalidArgument) {
		t.Errorf("unknown backend = %v", err)
	}
	foreign := facade.BackendWinMM
	if runtime.GOOS == "windows" {
		foreign = facade.BackendNanosleep
	}
	if _, err := facade.New(foreign, nil); !errors.Is(err, api.ErrPlatformUnsupported) {
		t.Errorf("New(%q) on %s = %v", foreign, runtime.GOOS, err)
	}
	cfg := quietConfig()
	cfg.Interval = time.Nanosecond
	if _, err := facade.New(facade.BackendSpin, cfg); !errors.Is(err, api.ErrInvalidArgument) {
		t.Errorf("sub-microsecond interval = %v", err)
	}
}

func TestBackendsIncludesPortable(t *testing.T) {
	got := strings.Join(facade.Backends(), ",")
	for _, want := range []string{facade.BackendSpin, facade.BackendGoTicker} {
		if !strings.Contains(got, want) {
			t.Errorf("Backends() = %s, missing %s", got, want)
		}
	}
}

func TestConfigReachesTimer(t *testing.T) {
	probes := control.NewDebugProbes()
	cfg := quietConfig()
	cfg.Name = "configured"
	cfg.Interval = 250 * time.Microsecond
	cfg.Probes = probes
	tm, err := facade.New(facade.BackendSpin, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer tm.Dispose()
	if tm.Name() != "configured" || tm.Interval() != 250*time.Microsecond {
		t.Fatalf("timer = %s %v", tm.Name(), tm.Interval())
	}
	if _, ok := probes.DumpState()["timer.configured"]; !ok {
		t.Fatal("stats probe not registered")
	}
}

func TestAbort(t *testing.T) {
	cfg := quietConfig()
	cfg.Interval = 100 * time.Microsecond
	tm, err := facade.New(facade.BackendSpin, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer tm.Dispose()

	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	_, _ = tm.Subscribe(func(api.TickEvent) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
	})
	if err := tm.Start(); err != nil {
		t.Fatal(err)
	}
	<-entered
	err = facade.Abort(tm, 2*time.Millisecond)
	if !errors.Is(err, api.ErrOperationTimeout) || api.CodeOf(err) != api.ErrCodeTimeout {
		t.Fatalf("Abort with a blocked handler = %v", err)
	}
	close(release)
	if err := facade.Abort(tm, api.WaitForever); err != nil {
		t.Fatalf("Abort = %v", err)
	}
	if tm.IsRunning() {
		t.Fatal("timer still running")
	}
}
