package log

import (
	"context"
	"io"
	"log/slog"
)

type discardHandler struct{}

// DiscardHandler returns a no-op handler
func DiscardHandler() slog.Handler {
	return &discardHandler{}
}

func (h *discardHandler) Handle(_ context.Context, r slog.Record) error {
	return nil
}

func (h *discardHandler) Enabled(_ context.Context, level slog.Level) bool {
	return false
}

func (h *discardHandler) WithGroup(name string) slog.Handler {
	return h
}

func (h *discardHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

// NewTerminalHandlerWithLevel returns a text handler that drops records below
// lvl. Level names are rendered in their aligned form.
func NewTerminalHandlerWithLevel(w io.Writer, lvl slog.Level, useColor bool) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && len(groups) == 0 {
				if l, ok := a.Value.Any().(slog.Level); ok {
					name := LevelAlignedString(l)
					if useColor {
						name = colorize(l, name)
					}
					return slog.String(slog.LevelKey, name)
				}
			}
			return a
		},
	})
}

// NewJSONHandler returns a JSON handler that drops records below lvl.
func NewJSONHandler(w io.Writer, lvl slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
}

func colorize(l slog.Level, s string) string {
	var code string
	switch {
	case l >= LevelError:
		code = "31"
	case l >= LevelWarn:
		code = "33"
	case l >= LevelInfo:
		code = "32"
	default:
		code = "36"
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}
