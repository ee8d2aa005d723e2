package otelhelper

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorTypeKey carries the Go type of the error that failed a span.
const ErrorTypeKey = "error.type"

// SetError records err on span and marks it failed.
func SetError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String(ErrorTypeKey, fmt.Sprintf("%T", err)))
}
