package utils

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger provides structured, leveled logging throughout the application.
type Logger struct {
	z zerolog.Logger
}

// NewLogger creates a Logger writing human-readable lines to stderr, so
// reports on stdout stay clean.
func NewLogger(level string) *Logger {
	return NewLoggerTo(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}, level)
}

// NewLoggerTo creates a Logger writing to w at the given level name.
// Unknown level names fall back to info.
func NewLoggerTo(w io.Writer, level string) *Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return &Logger{z: zerolog.New(w).Level(lvl).With().Timestamp().Logger()}
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{z: zerolog.Nop()}
}

// With returns a child logger carrying an extra field.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{z: l.z.With().Str(key, value).Logger()}
}

func (l *Logger) Info(format string, args ...any) {
	l.z.Info().Msgf(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.z.Warn().Msgf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.z.Error().Msgf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.z.Debug().Msgf(format, args...)
}
