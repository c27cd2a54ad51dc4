package config

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// NewLogger returns a stderr logger with timestamps and the level taken from
// GLITCH_LOG_LEVEL (default info).
func NewLogger(prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          prefix,
	})
	if level, err := log.ParseLevel(GetEnv("GLITCH_LOG_LEVEL", "info")); err == nil {
		logger.SetLevel(level)
	}
	return logger
}
