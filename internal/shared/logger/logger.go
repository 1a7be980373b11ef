package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is an alias used by services for dependency injection.
type Logger = zerolog.Logger

// New returns a structured logger with a consistent service field.
func New(service string) Logger {
	out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05.000"}
	return zerolog.New(out).With().Timestamp().Str("service", service).Logger()
}
