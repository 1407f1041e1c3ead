package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LevelFromString maps a -log-level value onto a slog level. Unknown names
// fall back to error.
func LevelFromString(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}

// OpenWriter returns stderr when path is empty, otherwise the file at path
// opened for append. Parent directories are created as needed. The returned
// closer is a no-op for stderr.
func OpenWriter(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stderr, func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return f, f.Close, nil
}

// New builds the JSON logger used by every command.
func New(w io.Writer, level string) *slog.Logger {
	options := &slog.HandlerOptions{
		AddSource: false,
		Level:     LevelFromString(level),
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

// Setup opens the log destination, installs the logger as the slog default
// and returns it with its closer. A log file that cannot be opened is
// reported on stderr and logging falls back to stderr.
func Setup(path, level string) (*slog.Logger, func() error) {
	w, closer, err := OpenWriter(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v; falling back to stderr\n", err)
		w, closer = os.Stderr, func() error { return nil }
	}
	l := New(w, level)
	slog.SetDefault(l)
	return l, closer
}
