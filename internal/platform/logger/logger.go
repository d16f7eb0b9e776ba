// Package logger provides the zerolog construction shared by the
// service and CLI binaries.
package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a logger writing JSON to stdout, tagged with the emitting
// binary. MARINA_LOG_LEVEL tightens or loosens verbosity; empty or
// unknown values keep the zerolog default.
func New(serviceName string) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().
		Str("service", serviceName).
		Timestamp().
		Logger()

	if lvl, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("MARINA_LOG_LEVEL"))); err == nil && lvl != zerolog.NoLevel {
		logger = logger.Level(lvl)
	}
	return logger
}
