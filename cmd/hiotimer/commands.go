// File: cmd/hiotimer/commands.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-timer/api"
	"github.com/momentics/hioload-timer/clock"
	"github.com/momentics/hioload-timer/configs"
	"github.com/momentics/hioload-timer/control"
	"github.com/momentics/hioload-timer/facade"
	"github.com/momentics/hioload-timer/tickwait"
)

const stopTimeout = time.Second

// runTicks logs every tick until the configured duration elapses.
func runTicks(cfg configs.TimerConfig, log logrus.FieldLogger, probes *control.DebugProbes, metrics *control.MetricsRegistry) error {
	t, err := newTimer(cfg, "run", log, probes)
	if err != nil {
		return err
	}
	defer t.Dispose()

	if _, err := t.Subscribe(func(ev api.TickEvent) {
		metrics.Add("run.ticks", 1)
		log.WithFields(logrus.Fields{
			"count":   ev.Sequence,
			"elapsed": ev.ElapsedMicros,
			"late":    ev.LateByMicros,
			"exec":    ev.HandlerMicros,
		}).Info("tick")
	}); err != nil {
		return err
	}
	if err := t.Start(); err != nil {
		return err
	}
	time.Sleep(time.Duration(cfg.Duration))
	if err := facade.Abort(t, stopTimeout); err != nil {
		return err
	}
	metrics.Set("run.stats", t.Stats())
	return nil
}

// waitTicks blocks on the timer cfg.Ticks times and reports the total time.
func waitTicks(cfg configs.TimerConfig, log logrus.FieldLogger, probes *control.DebugProbes, metrics *control.MetricsRegistry) error {
	t, err := newTimer(cfg, "wait", log, probes)
	if err != nil {
		return err
	}
	defer t.Dispose()

	w, err := tickwait.New(t)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := t.Start(); err != nil {
		return err
	}

	perTick := 10*time.Duration(cfg.Interval) + time.Second
	sw := clock.StartNew(clock.Default)
	for i := 0; i < cfg.Ticks; i++ {
		ok, err := w.WaitForTick(perTick)
		if err != nil {
			return err
		}
		if !ok {
			return api.NewError(api.ErrCodeTimeout, "no tick observed").
				WithContext("tick", i).
				WithContext("timeout", perTick)
		}
	}
	sw.Stop()

	total := time.Duration(sw.ElapsedMicros()) * time.Microsecond
	metrics.Set("wait.total", total.String())
	log.WithFields(logrus.Fields{
		"ticks":    cfg.Ticks,
		"total":    total,
		"expected": time.Duration(cfg.Ticks) * time.Duration(cfg.Interval),
	}).Info("wait finished")
	return facade.Abort(t, stopTimeout)
}

// bench runs cfg.Parallel timers on a goroutine pool and aggregates their
// statistics.
func bench(cfg configs.TimerConfig, log logrus.FieldLogger, probes *control.DebugProbes, metrics *control.MetricsRegistry) error {
	pool, err := ants.NewPool(cfg.Parallel)
	if err != nil {
		return err
	}
	defer pool.Release()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		first error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if first == nil {
			first = err
		}
	}
	for i := 0; i < cfg.Parallel; i++ {
		name := fmt.Sprintf("bench-%d", i)
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			st, err := benchOne(cfg, name, log, probes)
			if err != nil {
				fail(err)
				return
			}
			metrics.Add("bench.delivered", int64(st.Delivered))
			metrics.Add("bench.suppressed", int64(st.Suppressed))
			metrics.Set("bench."+name+".max_late_us", st.MaxLateMicro)
		}); err != nil {
			wg.Done()
			fail(err)
		}
	}
	wg.Wait()
	return first
}

func benchOne(cfg configs.TimerConfig, name string, log logrus.FieldLogger, probes *control.DebugProbes) (api.Stats, error) {
	t, err := newTimer(cfg, name, log, probes)
	if err != nil {
		return api.Stats{}, err
	}
	defer t.Dispose()
	if err := t.Start(); err != nil {
		return api.Stats{}, err
	}
	time.Sleep(time.Duration(cfg.Duration))
	if err := facade.Abort(t, stopTimeout); err != nil {
		return api.Stats{}, err
	}
	return t.Stats(), nil
}
