// Package logger sets up structured logging for the CLI.
package logger

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger writing to out at the given level.
// Unknown level names fall back to info.
func New(out io.Writer, level string) zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch level {
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}

	writer := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
}
