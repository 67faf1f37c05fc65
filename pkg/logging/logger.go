package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/akepally/ScholarRAG/internal/config"
)

// Logger is a component-scoped wrapper around slog so call sites never
// touch the global default directly.
type Logger struct {
	inner *slog.Logger
}

func Init() {
	initTo(os.Stdout)
}

// InitStderr routes logs to stderr, for binaries whose stdout carries a
// protocol (the MCP stdio server).
func InitStderr() {
	initTo(os.Stderr)
}

func initTo(w io.Writer) {
	options := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}

	var handler slog.Handler
	if config.IS_PROD {
		options.Level = config.LOG_LEVEL_PROD
		handler = slog.NewJSONHandler(w, options)
	} else {
		handler = slog.NewTextHandler(w, options)
	}
	slog.SetDefault(slog.New(handler))
}

func NewLogger(component string) *Logger {
	return &Logger{
		inner: slog.Default().With("component", component),
	}
}

func (l *Logger) Info(msg string, args ...any) {
	l.inner.Info(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.inner.Error(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.inner.Warn(msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.inner.Debug(msg, args...)
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		inner: l.inner.With(args...),
	}
}

// WithTrace attaches the request trace id when the context carries one.
func (l *Logger) WithTrace(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	if traceID, ok := ctx.Value(config.TraceIdValue).(string); ok && traceID != "" {
		return l.With("traceId", traceID)
	}
	return l
}
