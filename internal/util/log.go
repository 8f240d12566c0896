package util

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// NewLogger returns a timestamped stdout logger; unknown levels fall back to info.
func NewLogger(level string) zerolog.Logger {
	return NewLoggerTo(os.Stdout, level)
}

// NewLoggerTo is NewLogger writing to w.
func NewLoggerTo(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(lvl)
}
