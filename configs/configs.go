// File: configs/configs.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// JSON configuration for the hiotimer command. Durations are written as
// Go duration strings ("5ms") or as integer nanoseconds.

package configs

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/momentics/hioload-timer/api"
)

// Duration is a time.Duration with a readable JSON form.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		*d = Duration(time.Duration(x))
	case string:
		p, err := time.ParseDuration(x)
		if err != nil {
			return err
		}
		*d = Duration(p)
	default:
		return fmt.Errorf("configs: invalid duration %s", b)
	}
	return nil
}

// TimerConfig describes one demo run.
type TimerConfig struct {
	Backend    string   `json:"backend"`     // Backend name; empty selects the host default
	Interval   Duration `json:"interval"`    // Tick period
	IgnoreLate Duration `json:"ignore_late"` // Spin late threshold; 0 disables suppression
	Duration   Duration `json:"duration"`    // How long "run" and "bench" keep timers running
	CPU        int      `json:"cpu"`         // Spin worker CPU; -1 disables pinning
	LogLevel   string   `json:"log_level"`   // logrus level name
	Ticks      int      `json:"ticks"`       // Waits performed by "wait"
	Parallel   int      `json:"parallel"`    // Timers run concurrently by "bench"
}

// Default returns the settings of the reference demo: a 5 ms timer run
// for two seconds, 400 waits.
func Default() TimerConfig {
	return TimerConfig{
		Interval: Duration(5 * time.Millisecond),
		Duration: Duration(2 * time.Second),
		CPU:      -1,
		LogLevel: "info",
		Ticks:    400,
		Parallel: 4,
	}
}

// ReadConfigFromFile loads filePath over Default.
func ReadConfigFromFile(filePath string) (TimerConfig, error) {
	config := Default()
	data, err := os.ReadFile(filePath)
	if err != nil {
		return config, err
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("configs: parse %s: %w", filePath, err)
	}
	return config, config.Validate()
}

// Validate checks value ranges.
func (c TimerConfig) Validate() error {
	bad := func(field string, v any) error {
		return api.NewError(api.ErrCodeInvalidArgument, "invalid configuration value").
			WithContext("field", field).
			WithContext("value", v)
	}
	switch {
	case time.Duration(c.Interval) < time.Microsecond:
		return bad("interval", time.Duration(c.Interval))
	case c.IgnoreLate < 0:
		return bad("ignore_late", time.Duration(c.IgnoreLate))
	case c.Duration < 0:
		return bad("duration", time.Duration(c.Duration))
	case c.Ticks < 0:
		return bad("ticks", c.Ticks)
	case c.Parallel < 1:
		return bad("parallel", c.Parallel)
	}
	return nil
}
