// Package logging configures the process-wide structured logger.
//
// Logs are written to stderr as JSON. The level comes from the caller
// (normally the --log-level flag or LOG_LEVEL) and defaults to INFO. Debug
// level adds the source location to every record. Every record carries the
// module name and version:
//
//	{"time":"...","level":"INFO","msg":"server started","module":"recipevault","version":"dev","port":"8080"}
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a case-insensitive level name to a slog.Level. Unknown
// names map to INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewStructuredLogger returns a JSON logger writing to w at the given level.
func NewStructuredLogger(w io.Writer, module, version, level string) *slog.Logger {
	lvl := ParseLevel(level)
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl <= slog.LevelDebug,
	})
	return slog.New(handler).With(
		slog.String("module", module),
		slog.String("version", version),
	)
}

// SetDefaultStructuredLogger installs a stderr JSON logger as the slog default
// and returns it.
func SetDefaultStructuredLogger(module, version, level string) *slog.Logger {
	logger := NewStructuredLogger(os.Stderr, module, version, level)
	slog.SetDefault(logger)
	return logger
}
