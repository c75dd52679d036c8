// Package logging builds the process logger. It is constructed once at
// process entry and handed to the components that need it; nothing in
// this repository reconfigures a global logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Dir is the fixed relative directory the process log file lives in.
const Dir = "log"

// Options select the log level. Verbose and debug only affect
// verbosity, never program output.
type Options struct {
	Verbose bool
	Debug   bool
}

// New returns a logger writing to stderr and to a size-rotated file
// named after the program under Dir. The log directory is created on
// demand; if that fails the logger falls back to stderr only.
func New(program string, opts Options) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case opts.Debug:
		level = slog.LevelDebug
	case opts.Verbose:
		level = slog.LevelInfo
	}

	w := io.Writer(os.Stderr)
	if err := os.MkdirAll(Dir, 0o755); err == nil {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   filepath.Join(Dir, program+".log"),
			MaxSize:    10, // megabytes
			MaxBackups: 3,
		})
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
