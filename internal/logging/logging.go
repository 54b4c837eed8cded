package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var level = new(slog.LevelVar)

// Configure installs a text handler on stderr as the default slog logger.
// Report output goes to stdout, so logs never interleave with it.
func Configure(lvl string) *slog.Logger {
	return ConfigureWriter(os.Stderr, lvl)
}

// ConfigureWriter is Configure with an explicit destination.
func ConfigureWriter(w io.Writer, lvl string) *slog.Logger {
	level.Set(ParseLevel(lvl))
	l := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(l)
	return l
}

// ParseLevel maps DEBUG/INFO/WARN/ERROR to a slog level, defaulting to Info.
func ParseLevel(lvl string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(lvl)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
