// Package logging builds the zerolog loggers used by the client and server.
//
// The interactive client owns the terminal, so it logs JSON lines to a file.
// The server logs to stdout, through the console writer when stdout is a
// terminal.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// ParseLevel maps a config level name to a zerolog level. Unknown names
// fall back to info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New returns a timestamped logger writing to w at the given level.
func New(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// Console returns a logger for human eyes: the console writer on a
// terminal, plain JSON lines otherwise.
func Console(f *os.File, level string) zerolog.Logger {
	if term.IsTerminal(int(f.Fd())) {
		return New(zerolog.ConsoleWriter{Out: f, TimeFormat: time.RFC3339}, level)
	}
	return New(f, level)
}

// File opens path for appending and returns a logger writing to it, plus
// the closer for the file.
func File(path, level string) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return New(f, level), f, nil
}
