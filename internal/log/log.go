package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type Key struct{}

// LoggerKey stores the command logger on a context.
var LoggerKey = Key{}

// LevelTrace sits below debug and carries HTTP request and response logs.
const LevelTrace = slog.LevelDebug - 4

var levelNames = []string{"trace", "debug", "info", "warn", "error"}

// ParseLevel converts a config value into a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelError, fmt.Errorf("invalid log level %q, must be one of %v", level, levelNames)
	}
}

// FromContext returns the logger stored under LoggerKey, or a logger that
// discards everything.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(LoggerKey).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Settings drive New.
type Settings struct {
	Level slog.Level
	// File receives every record at or above Level. Empty disables the file.
	File string
	// ErrOut receives error records in the friendly format.
	ErrOut io.Writer
}

// New builds the command logger: a text handler writing to the log file, with
// error records mirrored to ErrOut. The returned close function releases the
// file.
func New(s Settings) (*slog.Logger, func() error, error) {
	closeFn := func() error { return nil }

	var primary slog.Handler
	if s.File != "" {
		if err := os.MkdirAll(filepath.Dir(s.File), 0o755); err != nil {
			return nil, closeFn, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(s.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, closeFn, fmt.Errorf("failed to open log file: %w", err)
		}
		closeFn = f.Close
		primary = slog.NewTextHandler(f, &slog.HandlerOptions{
			Level:       s.Level,
			ReplaceAttr: replaceLevelName,
		})
	}

	var secondary slog.Handler
	if s.ErrOut != nil {
		secondary = NewFriendlyErrorHandler(s.ErrOut)
	}

	return slog.New(NewDualHandler(primary, secondary)), closeFn, nil
}

func replaceLevelName(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}
