// Package log wraps log/slog with component-scoped loggers and the
// structured field names used across the application.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger and stamps every record with its component.
type Logger struct {
	*slog.Logger
	component string
}

// Config holds logger configuration.
type Config struct {
	Level     slog.Level
	Component string
	JSON      bool
	Output    io.Writer
}

// DefaultConfig returns development defaults. LOG_LEVEL overrides the
// level (DEBUG, INFO, WARN, ERROR).
func DefaultConfig() Config {
	level := slog.LevelInfo
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level = parseLevel(v)
	}
	return Config{Level: level, Component: ComponentApp, Output: os.Stdout}
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
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

// New creates a logger with the given configuration.
func New(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: config.Level}
	var handler slog.Handler
	if config.JSON {
		handler = slog.NewJSONHandler(config.Output, opts)
	} else {
		handler = slog.NewTextHandler(config.Output, opts)
	}
	return &Logger{Logger: slog.New(handler), component: config.Component}
}

// Setup creates a logger and installs it as the process default.
func Setup(config Config) *Logger {
	l := New(config)
	slog.SetDefault(l.Logger)
	return l
}

// WithComponent returns a logger scoped to a specific component name.
// The component is kept as plain state, not a slog attribute, so
// re-scoping replaces it instead of stacking a second attribute on the
// record.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger, component: component}
}

// With returns a logger with extra attributes attached.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), component: l.component}
}

func (l *Logger) scoped(args []any) []any {
	return append([]any{FieldComponent, l.component}, args...)
}

// Debug logs at Debug level with component.
func (l *Logger) Debug(msg string, args ...any) {
	l.Logger.Debug(msg, l.scoped(args)...)
}

// Info logs at Info level with component.
func (l *Logger) Info(msg string, args ...any) {
	l.Logger.Info(msg, l.scoped(args)...)
}

// Warn logs at Warn level with component.
func (l *Logger) Warn(msg string, args ...any) {
	l.Logger.Warn(msg, l.scoped(args)...)
}

// Error logs at Error level with component.
func (l *Logger) Error(msg string, args ...any) {
	l.Logger.Error(msg, l.scoped(args)...)
}

// InfoContext logs at Info level with context and component.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.Logger.InfoContext(ctx, msg, l.scoped(args)...)
}

// WarnContext logs at Warn level with context and component.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.Logger.WarnContext(ctx, msg, l.scoped(args)...)
}

// ErrorContext logs at Error level with context and component.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.Logger.ErrorContext(ctx, msg, l.scoped(args)...)
}

// Component returns the logger's component name.
func (l *Logger) Component() string {
	return l.component
}
