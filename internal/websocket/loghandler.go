package websocket

import (
	"context"
	"log/slog"
	"strings"

	"aolcli/internal/infrastructure"
)

// LogHandler is the GUI adapter for the logging capability: a slog.Handler
// that mirrors every record onto the hub so the browser console shows the
// same lines as the terminal.
type LogHandler struct {
	hub   *Hub
	level slog.Level
	attrs []slog.Attr
}

// NewLogHandler builds the adapter.
func NewLogHandler(hub *Hub, level slog.Level) *LogHandler {
	return &LogHandler{hub: hub, level: level}
}

func (h *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *LogHandler) Handle(_ context.Context, r slog.Record) error {
	r.AddAttrs(h.attrs...)
	h.hub.BroadcastEvent(Event{
		Type:    TypeLog,
		Level:   strings.ToLower(r.Level.String()),
		Message: infrastructure.FormatRecord(r),
	})
	return nil
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *LogHandler) WithGroup(string) slog.Handler { return h }
