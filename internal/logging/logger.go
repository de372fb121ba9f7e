// Package logging provides a structured logging wrapper around
// charmbracelet/log.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// defaultLogger is the package-level default logger instance.
var (
	defaultLogger *log.Logger
	defaultOnce   sync.Once
)

// Default returns the shared default logger, writing to stderr at the info
// level. Components receive a logger by reference at construction; Default
// is the fallback when none is supplied.
func Default() *log.Logger {
	defaultOnce.Do(func() {
		defaultLogger = New(os.Stderr, log.InfoLevel)
	})
	return defaultLogger
}

// New creates a logger writing to w at the given level.
func New(w io.Writer, level log.Level) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
	return logger
}

// ParseLevel maps a config string to a log level, defaulting to info.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
