// Package shared holds the helpers every schwimmen command needs:
// logger construction and signal-aware contexts.
package shared

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// SetupLogger configures the root logger. Components derive their own
// loggers from it via WithPrefix.
func SetupLogger(debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}

	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
}

// ParseLevel maps a config file log level onto the logger, falling
// back to info for unknown values.
func ParseLevel(logger *log.Logger, level string) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}
	logger.SetLevel(parsed)
}
