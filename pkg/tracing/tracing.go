// Package tracing bootstraps the OpenTelemetry tracer provider.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Supported exporters.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

// ErrUnknownExporter is returned for an exporter name Init does not know.
var ErrUnknownExporter = errors.New("unknown trace exporter")

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

// Init installs a global tracer provider for exporter. With ExporterNone (or "")
// the global no-op provider stays in place and the returned shutdown does nothing.
func Init(ctx context.Context, exporter, serviceName string) (ShutdownFunc, error) {
	switch strings.ToLower(strings.TrimSpace(exporter)) {
	case "", ExporterNone:
		return func(context.Context) error { return nil }, nil
	case ExporterStdout:
		exp, err := stdouttrace.New(stdouttrace.WithWriter(os.Stdout))
		if err != nil {
			return nil, fmt.Errorf("stdout trace exporter: %w", err)
		}
		return install(ctx, exp, serviceName), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, exporter)
	}
}

// InitWithExporter installs a tracer provider around an arbitrary exporter.
// Tests use it with an in-memory exporter.
func InitWithExporter(ctx context.Context, exp sdktrace.SpanExporter, serviceName string) ShutdownFunc {
	return install(ctx, exp, serviceName)
}

func install(_ context.Context, exp sdktrace.SpanExporter, serviceName string) ShutdownFunc {
	if serviceName == "" {
		serviceName = "glassbox"
	}
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
