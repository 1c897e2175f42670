// File: cmd/hiotimer/main.go
// Package main
// Demonstration harness for hioload-timer: prints ticks, drives the
// tick-to-wait bridge and runs several timers in parallel.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-timer/api"
	"github.com/momentics/hioload-timer/configs"
	"github.com/momentics/hioload-timer/control"
	"github.com/momentics/hioload-timer/facade"
	"github.com/momentics/hioload-timer/internal/logs"
)

const usage = `usage: hiotimer [flags] <command>

commands:
  run     print every tick for the configured duration
  wait    block on the timer for the configured number of ticks
  bench   run several timers in parallel and report lateness
  list    show backends available on this system

flags:
`

func main() {
	log := logs.NewLogger("hiotimer")
	if err := execute(os.Args[1:], os.Stderr, log); err != nil {
		log.WithError(err).Error("hiotimer failed")
		os.Exit(1)
	}
}

// execute parses args and runs the selected command.
func execute(args []string, stderr io.Writer, log *logrus.Logger) error {
	cfg, cmd, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}
	if err := logs.SetLevel(log, cfg.LogLevel); err != nil {
		return err
	}

	probes := control.NewDebugProbes()
	control.RegisterPlatformProbes(probes)
	metrics := control.NewMetricsRegistry()

	switch cmd {
	case "run":
		err = runTicks(cfg, log, probes, metrics)
	case "wait":
		err = waitTicks(cfg, log, probes, metrics)
	case "bench":
		err = bench(cfg, log, probes, metrics)
	case "list":
		for _, name := range facade.Backends() {
			fmt.Fprintln(stderr, name)
		}
		return nil
	default:
		return api.NewError(api.ErrCodeInvalidArgument, "unknown command").WithContext("command", cmd)
	}
	if err != nil {
		return err
	}
	log.WithField("metrics", metrics.GetSnapshot()).WithField("probes", probes.DumpState()).Info("done")
	return nil
}

// parseArgs loads the optional config file and applies explicitly set
// flags on top of it.
func parseArgs(args []string, stderr io.Writer) (configs.TimerConfig, string, error) {
	def := configs.Default()
	fs := flag.NewFlagSet("hiotimer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	path := fs.String("config", "", "JSON configuration file")
	backend := fs.String("backend", def.Backend, "timer backend; empty selects the system default")
	interval := fs.Duration("interval", time.Duration(def.Interval), "tick interval")
	ignoreLate := fs.Duration("ignore-late", time.Duration(def.IgnoreLate), "spin: suppress ticks this late, 0 disables")
	duration := fs.Duration("duration", time.Duration(def.Duration), "run and bench duration")
	cpu := fs.Int("cpu", def.CPU, "spin: pin the worker to this CPU, -1 disables")
	level := fs.String("log-level", def.LogLevel, "log level")
	ticks := fs.Int("ticks", def.Ticks, "wait: number of ticks")
	parallel := fs.Int("parallel", def.Parallel, "bench: concurrent timers")
	if err := fs.Parse(args); err != nil {
		return def, "", err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return def, "", api.NewError(api.ErrCodeInvalidArgument, "expected exactly one command").
			WithContext("args", fs.Args())
	}

	cfg := def
	if *path != "" {
		var err error
		if cfg, err = configs.ReadConfigFromFile(*path); err != nil {
			return cfg, "", err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = *backend
		case "interval":
			cfg.Interval = configs.Duration(*interval)
		case "ignore-late":
			cfg.IgnoreLate = configs.Duration(*ignoreLate)
		case "duration":
			cfg.Duration = configs.Duration(*duration)
		case "cpu":
			cfg.CPU = *cpu
		case "log-level":
			cfg.LogLevel = *level
		case "ticks":
			cfg.Ticks = *ticks
		case "parallel":
			cfg.Parallel = *parallel
		}
	})
	return cfg, fs.Arg(0), cfg.Validate()
}

// newTimer builds the configured timer.
func newTimer(cfg configs.TimerConfig, name string, log logrus.FieldLogger, probes *control.DebugProbes) (api.Timer, error) {
	fc := facade.DefaultConfig()
	fc.Name = name
	fc.Interval = time.Duration(cfg.Interval)
	fc.LateThreshold = time.Duration(cfg.IgnoreLate)
	fc.CPU = cfg.CPU
	fc.Logger = log
	fc.Probes = probes
	if cfg.Backend == "" {
		return facade.Create(fc)
	}
	return facade.New(cfg.Backend, fc)
}
