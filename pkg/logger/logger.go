// Package logger provides a simple, clean logging interface backed by zap.
package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the logging interface.
type Logger interface {
	// Context-aware variants
	Info(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Fatal(ctx context.Context, msg string, fields ...Field)

	Named(name string) Logger
}

// Field represents a key-value pair for structured logging.
type Field = zap.Field

// Field constructors.
func String(key, val string) Field          { return zap.String(key, val) }
func Int(key string, val int) Field         { return zap.Int(key, val) }
func Float64(key string, val float64) Field { return zap.Float64(key, val) }
func Bool(key string, val bool) Field       { return zap.Bool(key, val) }
func Any(key string, val interface{}) Field { return zap.Any(key, val) }
func Error(err error) Field                 { return zap.Error(err) }

// zapLogger implements Logger using zap.
type zapLogger struct {
	z *zap.Logger
}

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{z: l.z.Named(name)}
}

func (l *zapLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.z.Info(msg, withTrace(ctx, fields)...)
}

func (l *zapLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.z.Error(msg, withTrace(ctx, fields)...)
}

func (l *zapLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.z.Debug(msg, withTrace(ctx, fields)...)
}

func (l *zapLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.z.Warn(msg, withTrace(ctx, fields)...)
}

func (l *zapLogger) Fatal(ctx context.Context, msg string, fields ...Field) {
	l.z.Fatal(msg, withTrace(ctx, fields)...)
}

// withTrace appends the active span's trace and span ids, if any.
func withTrace(ctx context.Context, fields []Field) []Field {
	if ctx == nil {
		return fields
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return fields
	}
	return append(fields,
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

var (
	global Logger
	base   *zap.Logger
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Init initializes the global logger with JSON output on stdout.
func Init() error {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.Sampling = nil
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("build zap logger: %w", err)
	}
	base = z
	global = &zapLogger{z: z}
	return nil
}

// New wraps an existing zap logger, mainly for tests that want an observer core.
func New(z *zap.Logger) Logger {
	return &zapLogger{z: z.WithOptions(zap.AddCallerSkip(1))}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &zapLogger{z: zap.NewNop()}
}

// Get returns the global logger.
func Get() Logger {
	if global == nil {
		// The logger should be explicitly initialized by the application
		panic("logger not initialized. Call logger.Init() first")
	}
	return global
}

// Named creates a named logger.
func Named(name string) Logger {
	return Get().Named(name)
}

// Sync flushes buffered log entries. Errors from syncing a terminal are ignored.
func Sync() error {
	if base == nil {
		return nil
	}
	err := base.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}

// SetLevel updates the current logging level for the global logger.
func SetLevel(l zapcore.Level) { level.SetLevel(l) }

// SetLevelString parses and sets the logging level.
// Accepts: debug, info, warn/warning, error (case-insensitive).
func SetLevelString(lvl string) error {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		SetLevel(zapcore.DebugLevel)
	case "", "info":
		SetLevel(zapcore.InfoLevel)
	case "warn", "warning":
		SetLevel(zapcore.WarnLevel)
	case "error":
		SetLevel(zapcore.ErrorLevel)
	default:
		return fmt.Errorf("unknown log level: %s", lvl)
	}
	return nil
}
