package tracing

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestTraceContextRoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	headers := InjectTraceContext(ctx, []kafka.Header{{Key: "content-type", Value: []byte("application/json")}})
	require.Len(t, headers, 2)

	carrier := &kafkaHeaderCarrier{headers: headers}
	assert.NotEmpty(t, carrier.Get("traceparent"))
	assert.ElementsMatch(t, []string{"content-type", "traceparent"}, carrier.Keys())

	extracted := ExtractTraceContext(context.Background(), headers)
	_, child := tp.Tracer("test").Start(extracted, "consume")
	defer child.End()

	assert.Equal(t, span.SpanContext().TraceID(), child.SpanContext().TraceID())
}

func TestCarrierSetOverwrites(t *testing.T) {
	carrier := &kafkaHeaderCarrier{}
	carrier.Set("k", "a")
	carrier.Set("k", "b")

	assert.Len(t, carrier.headers, 1)
	assert.Equal(t, "b", carrier.Get("k"))
}
