// Package logging builds the zerolog logger. The TUI owns the terminal, so
// logs go to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

const (
	dirMode  = 0o700
	fileMode = 0o600
)

// New returns a JSON logger writing to w at level.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	if w == nil {
		w = io.Discard
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Open appends to the log file at path. The returned close func is safe to
// call once. An empty path discards all output.
func Open(path string, level zerolog.Level) (zerolog.Logger, func() error, error) {
	if path == "" {
		return zerolog.Nop(), func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, fileMode)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	return New(f, level), f.Close, nil
}
