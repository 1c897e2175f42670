package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/momentics/hioload-timer/api"
	"github.com/momentics/hioload-timer/internal/logs"
)

func TestParseArgsDefaults(t *testing.T) {
	cfg, cmd, err := parseArgs([]string{"run"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cmd != "run" || time.Duration(cfg.Interval) != 5*time.Millisecond || cfg.Ticks != 400 {
		t.Fatalf("cfg = %+v, cmd = %q", cfg, cmd)
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timer.json")
	body := `{"backend": "goticker", "interval": "2ms", "ticks": 10}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, _, err := parseArgs([]string{"-config", path, "-ticks", "3", "wait"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend != "goticker" || time.Duration(cfg.Interval) != 2*time.Millisecond {
		t.Fatalf("file values lost: %+v", cfg)
	}
	if cfg.Ticks != 3 {
		t.Fatalf("flag did not override file: ticks = %d", cfg.Ticks)
	}
}

func TestParseArgsErrors(t *testing.T) {
	if _, _, err := parseArgs(nil, io.Discard); !errors.Is(err, api.ErrInvalidArgument) {
		t.Errorf("no command = %v", err)
	}
	if _, _, err := parseArgs([]string{"-parallel", "0", "bench"}, io.Discard); !errors.Is(err, api.ErrInvalidArgument) {
		t.Errorf("zero parallel = %v", err)
	}
	if err := execute([]string{"fly"}, io.Discard, logs.Discard()); !errors.Is(err, api.ErrInvalidArgument) {
		t.Errorf("unknown command = %v", err)
	}
}

func TestCommandsWithGoTicker(t *testing.T) {
	log := logs.Discard()
	for _, cmd := range []string{"run", "wait", "bench", "list"} {
		args := []string{
			"-backend", "goticker",
			"-interval", "1ms",
			"-duration", "20ms",
			"-ticks", "5",
			"-parallel", "2",
			"-log-level", "error",
			cmd,
		}
		if err := execute(args, io.Discard, log); err != nil {
			t.Errorf("%s: %v", cmd, err)
		}
	}
}
