// Package logging sets up the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Init configures the global zerolog logger. When pretty is true (local
// development) logs are written through a ConsoleWriter; otherwise plain
// JSON is emitted to stdout for ingestion by a log collector.
func Init(levelName string, pretty bool) zerolog.Logger {
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger
}

// Named returns a child logger tagged with a component name, mirroring the
// per-subsystem prefixes the original [INFO]/[ERROR] loggers used.
func Named(base zerolog.Logger, component string) zerolog.Logger {
	return base.With().Str("component", component).Logger()
}
