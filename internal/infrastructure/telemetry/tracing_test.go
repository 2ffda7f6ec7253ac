package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// recordSpans installs an in-memory tracer provider for the test
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func attrsOf(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestStartServiceSpan(t *testing.T) {
	recorder := recordSpans(t)
	saleID := uuid.New()

	_, span := telemetry.StartServiceSpan(context.Background(), "SaleProcessor", "Process",
		telemetry.WithAttribute(telemetry.SpanAttrSaleID, saleID),
		telemetry.WithAttribute(telemetry.SpanAttrSaleLines, 3),
		telemetry.WithSpanKind(trace.SpanKindServer),
	)
	telemetry.SetOK(span)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "SaleProcessor.Process", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)

	attrs := attrsOf(spans[0])
	assert.Equal(t, saleID.String(), attrs[telemetry.SpanAttrSaleID].AsString(), "Stringer values are stringified")
	assert.Equal(t, int64(3), attrs[telemetry.SpanAttrSaleLines].AsInt64())
}

func TestSetAttributesAndEvents(t *testing.T) {
	recorder := recordSpans(t)

	_, span := telemetry.StartSpan(context.Background(), "stock.restock")
	telemetry.SetAttributes(span,
		telemetry.SpanAttrQuantity, 12,
		telemetry.SpanAttrMovementType, "RESTOCK",
		42, "ignored non-string key",
		"dangling",
	)
	telemetry.AddEvent(span, "alert_resolved", "threshold", int64(5), "manual", false)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := attrsOf(spans[0])
	assert.Len(t, attrs, 2)
	assert.Equal(t, int64(12), attrs[telemetry.SpanAttrQuantity].AsInt64())
	assert.Equal(t, "RESTOCK", attrs[telemetry.SpanAttrMovementType].AsString())

	require.Len(t, spans[0].Events(), 1)
	event := spans[0].Events()[0]
	assert.Equal(t, "alert_resolved", event.Name)
	assert.Len(t, event.Attributes, 2)
}

func TestRecordError(t *testing.T) {
	recorder := recordSpans(t)

	_, span := telemetry.StartSpan(context.Background(), "sale.commit")
	telemetry.RecordError(span, nil)
	telemetry.RecordError(span, errors.New("deadlock detected"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "deadlock detected", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1, "nil errors are not recorded")
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), telemetry.SamplerFor(1.5).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), telemetry.SamplerFor(0).Description())
	assert.Equal(t, sdktrace.TraceIDRatioBased(0.1).Description(), telemetry.SamplerFor(0.1).Description())
}
