// Package logger builds the root zerolog logger for the calendar
// service. Every component derives its own logger from the root with
// log.With().Str("component", ...), so the root carries only the
// level, timestamps, and output format.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the log level and output format.
type Config struct {
	Level  string // debug, info, warn, error
	Pretty bool   // human-readable console output for development
}

// New builds the root logger. The level is set on the logger itself,
// not globally, so a host embedding the registry keeps its own level.
// An unknown or empty level falls back to info; a bad LOG_LEVEL must
// never silence the service.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stdout
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()
}
