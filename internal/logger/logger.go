package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

var (
	// default logger instance, swapped atomically by Configure
	defaultLogger atomic.Pointer[slog.Logger]
)

// initializes the logger based on environment
func init() {
	Configure(os.Getenv("ENVIRONMENT"), nil)
}

// Configure rebuilds the default logger. Production logs JSON at INFO,
// anything else logs text at DEBUG. A nil writer keeps the environment's
// default stream (stdout for JSON, stderr for text).
func Configure(env string, w io.Writer) {
	defaultLogger.Store(slog.New(newHandler(env, w)))
}

func newHandler(env string, w io.Writer) slog.Handler {
	if env == "production" {
		if w == nil {
			w = os.Stdout
		}

		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	if w == nil {
		w = os.Stderr
	}

	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// returns the default logger instance
func Default() *slog.Logger {
	return defaultLogger.Load()
}

// creates a logger with additional context fields
func With(args ...any) *slog.Logger {
	return Default().With(args...)
}

// returns the logger carried by ctx, or the default one
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return Default()
	}

	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}

	return Default()
}

// adds logger to context
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

type loggerKey struct{}

// logs a debug message
func Debug(msg string, args ...any) {
	Default().Debug(msg, args...)
}

// logs an info message
func Info(msg string, args ...any) {
	Default().Info(msg, args...)
}

// logs a warning message
func Warn(msg string, args ...any) {
	Default().Warn(msg, args...)
}

// logs an error message
func Error(msg string, args ...any) {
	Default().Error(msg, args...)
}

// logs an error with context
func ErrorErr(err error, msg string, args ...any) {
	args = append(args, "error", err)
	Default().Error(msg, args...)
}

// logs a fatal error and exits (for CLI tools)
func Fatal(msg string, args ...any) {
	Default().Error(msg, args...)
	os.Exit(1)
}

// logs a fatal error with error and exits (for CLI tools)
func FatalErr(err error, msg string, args ...any) {
	args = append(args, "error", err)
	Default().Error(msg, args...)
	os.Exit(1)
}
