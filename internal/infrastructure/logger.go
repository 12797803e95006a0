// Package infrastructure provides the logging setup shared by the CLIs and
// the web GUI: a colored console sink plus a timestamped error log file whose
// creation is deferred until the first error-level record.
package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"aolcli/internal/config"
)

// ANSI sequences per level: info green, warning orange, error red.
const (
	colorInfo  = "\033[32m"
	colorWarn  = "\033[38;5;214m"
	colorError = "\033[31m"
	colorReset = "\033[0m"
)

// NewLogger builds the application logger. Extra handlers (the GUI console
// adapter) receive every record alongside the console and the lazy error
// file. The logger is passed into components explicitly; there is no
// reconfigurable global.
func NewLogger(cfg config.LoggingConfig, logsDir string, extra ...slog.Handler) *slog.Logger {
	handlers := []slog.Handler{
		newConsoleHandler(os.Stdout, parseLevel(cfg.Level), cfg.Color),
		newLazyFileHandler(logsDir),
	}
	handlers = append(handlers, extra...)
	return slog.New(&fanoutHandler{handlers: handlers})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// FormatRecord renders a record the way every text sink shows it.
func FormatRecord(r slog.Record) string {
	var b strings.Builder
	b.WriteString(r.Time.Format("2006-01-02 15:04:05"))
	b.WriteString(" - ")
	b.WriteString(r.Level.String())
	b.WriteString(" - ")
	b.WriteString(r.Message)
	r.Attrs(func(a slog.Attr) bool {
		b.WriteString(" ")
		b.WriteString(a.Key)
		b.WriteString("=")
		b.WriteString(a.Value.String())
		return true
	})
	return b.String()
}

// fanoutHandler dispatches each record to every child whose level accepts it.
type fanoutHandler struct {
	handlers []slog.Handler
}

func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, child := range h.handlers {
		if child.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, child := range h.handlers {
		if !child.Enabled(ctx, r.Level) {
			continue
		}
		if err := child.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	children := make([]slog.Handler, len(h.handlers))
	for i, child := range h.handlers {
		children[i] = child.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: children}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	children := make([]slog.Handler, len(h.handlers))
	for i, child := range h.handlers {
		children[i] = child.WithGroup(name)
	}
	return &fanoutHandler{handlers: children}
}

// consoleHandler writes level-colored lines to a writer.
type consoleHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	level slog.Level
	color bool
	attrs []slog.Attr
}

func newConsoleHandler(w io.Writer, level slog.Level, color bool) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: level, color: color}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	r.AddAttrs(h.attrs...)
	line := FormatRecord(r)
	if h.color {
		switch {
		case r.Level >= slog.LevelError:
			line = colorError + line + colorReset
		case r.Level >= slog.LevelWarn:
			line = colorWarn + line + colorReset
		case r.Level >= slog.LevelInfo:
			line = colorInfo + line + colorReset
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.w, line)
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *consoleHandler) WithGroup(string) slog.Handler { return h }

// lazyFileHandler mirrors error-level records to a timestamped log file under
// the logs directory. The file is created on the first error so clean runs
// leave no log file behind.
type lazyFileHandler struct {
	state *lazyFileState
	attrs []slog.Attr
}

// lazyFileState is shared across WithAttrs clones so only one file is ever
// opened.
type lazyFileState struct {
	mu      sync.Mutex
	logsDir string
	file    *os.File
	failed  bool
}

func newLazyFileHandler(logsDir string) *lazyFileHandler {
	return &lazyFileHandler{state: &lazyFileState{logsDir: logsDir}}
}

func (h *lazyFileHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *lazyFileHandler) Handle(_ context.Context, r slog.Record) error {
	s := h.state
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed {
		return nil
	}
	if s.file == nil {
		if err := s.open(); err != nil {
			// Creation failures must not silence the console sink.
			s.failed = true
			fmt.Fprintf(os.Stderr, "failed to create log file: %v\n", err)
			return nil
		}
	}
	r.AddAttrs(h.attrs...)
	_, err := fmt.Fprintln(s.file, FormatRecord(r))
	return err
}

func (s *lazyFileState) open() error {
	if err := os.MkdirAll(s.logsDir, 0755); err != nil {
		return err
	}
	name := fmt.Sprintf("log_%s.log", time.Now().Format("20060102_150405"))
	file, err := os.OpenFile(filepath.Join(s.logsDir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	s.file = file
	return nil
}

func (h *lazyFileHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := &lazyFileHandler{state: h.state}
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return clone
}

func (h *lazyFileHandler) WithGroup(string) slog.Handler { return h }
