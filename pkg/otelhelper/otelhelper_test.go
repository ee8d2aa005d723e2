package otelhelper_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/dukex/flowdesk/pkg/otelhelper"
)

func TestStartSpanAndSetError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := otelhelper.StartSpan(t.Context(), provider.Tracer("test"), "builder.save",
		attribute.String(otelhelper.WorkflowIDKey, "wf-1"))
	otelhelper.SetError(span, errors.New("auth expired"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "builder.save", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "auth expired", spans[0].Status().Description)
	assert.Contains(t, spans[0].Attributes(), attribute.String(otelhelper.WorkflowIDKey, "wf-1"))
	assert.Contains(t, spans[0].Attributes(), attribute.String(otelhelper.ErrorTypeKey, "*errors.errorString"))
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestTracerIsNoopByDefault(t *testing.T) {
	_, span := otelhelper.StartSpan(t.Context(), otelhelper.Tracer("test"), "noop")
	defer span.End()

	assert.False(t, span.SpanContext().IsValid())
}
