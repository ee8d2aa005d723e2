// Package otelhelper wires OpenTelemetry tracing for the workflow service and client.
package otelhelper

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otlptracehttp "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	WorkflowIDKey   = "flowdesk.workflow.id"
	WorkflowNameKey = "flowdesk.workflow.name"
	StepCountKey    = "flowdesk.workflow.steps"
	EventTypeKey    = "flowdesk.event.type"
	SourceKey       = "flowdesk.collection.source"
	CountKey        = "flowdesk.collection.count"
)

// ShutdownFunc flushes pending spans.
type ShutdownFunc func(ctx context.Context) error

// NewTracer installs a batching OTLP/HTTP provider as the global one and returns
// its shutdown. Endpoint and headers come from the OTEL_EXPORTER_OTLP_* variables.
func NewTracer(ctx context.Context, serviceName string) (ShutdownFunc, error) {
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		return nil, err
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return provider.Shutdown, nil
}

// Tracer returns a named tracer bound to the global provider, a no-op until NewTracer runs.
//
// nolint:ireturn
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// nolint:ireturn,spancheck
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
