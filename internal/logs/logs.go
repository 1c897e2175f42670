// File: internal/logs/logs.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// logrus logger factory. Every component logger prefixes its messages with
// the owning component name.

package logs

import (
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"
)

// formatter adds the owner prefix to each log entry.
type formatter struct {
	owner string
	lf    log.Formatter
}

// Format satisfies the log.Formatter interface.
func (f *formatter) Format(e *log.Entry) ([]byte, error) {
	e.Message = fmt.Sprintf("[%s] %s", f.owner, e.Message)
	return f.lf.Format(e)
}

// NewLogger creates a logger for owner at Info level.
func NewLogger(owner string) *log.Logger {
	logger := log.New()
	logger.SetFormatter(&formatter{
		owner: owner,
		lf: &log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.StampMicro,
		},
	})
	logger.SetLevel(log.InfoLevel)
	return logger
}

// Discard returns a logger that drops everything, for tests.
func Discard() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}

// SetLevel parses level ("debug", "info", ...) and applies it.
func SetLevel(logger *log.Logger, level string) error {
	if level == "" {
		return nil
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	logger.SetLevel(lvl)
	return nil
}
