package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the global logger instance configured for the application.
var Logger *slog.Logger

// InitLogger configures the global logger. Logs go to stderr so stdout stays
// reserved for fact output. The "json" format uses a Datadog-friendly JSON
// handler; "text" uses slog's key=value handler for interactive runs.
func InitLogger(level string, format string, service string) {
	Logger = NewLogger(os.Stderr, level, format, service)
	slog.SetDefault(Logger)
}

// NewLogger builds a logger writing to w without touching the global default.
func NewLogger(w io.Writer, level string, format string, service string) *slog.Logger {
	options := &slog.HandlerOptions{
		Level: parseLevel(level),
	}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, options).WithAttrs([]slog.Attr{slog.String("service", service)}))
	}
	return slog.New(&datadogHandler{
		next:    slog.NewJSONHandler(w, options),
		service: service,
	})
}

// GetLogger returns the global logger instance, or slog's default before
// InitLogger has run.
func GetLogger() *slog.Logger {
	if Logger == nil {
		return slog.Default()
	}
	return Logger
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

type datadogHandler struct {
	next    slog.Handler
	service string
}

func (h *datadogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *datadogHandler) Handle(ctx context.Context, record slog.Record) error {
	clone := record.Clone()
	clone.AddAttrs(
		slog.String("service", h.service),
		slog.String("status", levelToStatus(clone.Level)),
		slog.String("dd.trace_id", ""),
		slog.String("dd.span_id", ""),
		slog.String("message", clone.Message),
	)
	return h.next.Handle(ctx, clone)
}

func (h *datadogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &datadogHandler{
		next:    h.next.WithAttrs(attrs),
		service: h.service,
	}
}

func (h *datadogHandler) WithGroup(name string) slog.Handler {
	return &datadogHandler{
		next:    h.next.WithGroup(name),
		service: h.service,
	}
}

func levelToStatus(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "debug"
	case slog.LevelWarn:
		return "warning"
	case slog.LevelError:
		return "error"
	default:
		return "info"
	}
}
