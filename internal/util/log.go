package util

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds a leveled logger writing JSON lines to w. Unknown
// levels fall back to info.
func NewLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(lvl)
}

// NewConsoleLogger is NewLogger with human readable output for terminals
func NewConsoleLogger(w io.Writer, level string) zerolog.Logger {
	return NewLogger(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}, level)
}
