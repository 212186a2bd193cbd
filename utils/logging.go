package utils

import (
	"io"
	"log/slog"
)

// NewLogger builds a text logger that prints levels the way the curator
// console always has: [i] for info, [!] for warnings and [x] for errors.
func NewLogger(level slog.Leveler, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevel,
	}))
}

func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) != 0 || a.Key != slog.LevelKey {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	switch {
	case level >= slog.LevelError:
		a.Value = slog.StringValue("[x]")
	case level >= slog.LevelWarn:
		a.Value = slog.StringValue("[!]")
	case level >= slog.LevelInfo:
		a.Value = slog.StringValue("[i]")
	default:
		a.Value = slog.StringValue("DEBUG")
	}
	return a
}
