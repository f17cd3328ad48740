package infrastructure

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"auctionserver/internal/config"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	for _, cfg := range []config.TracingConfig{
		{Enabled: false, Exporter: "stdout", SampleRatio: 1},
		{Enabled: true, Exporter: "none", SampleRatio: 1},
	} {
		tp, shutdown, err := NewTracerProvider(cfg, &bytes.Buffer{}, nil)
		require.NoError(t, err)
		assert.IsType(t, noop.TracerProvider{}, tp)
		assert.NoError(t, shutdown(context.Background()))
	}
}

func TestNewTracerProvider_Stdout(t *testing.T) {
	var buf bytes.Buffer
	tp, shutdown, err := NewTracerProvider(config.TracingConfig{Enabled: true, Exporter: "stdout", SampleRatio: 1}, &buf, nil)
	require.NoError(t, err)

	_, span := tp.Tracer(TracerName).Start(context.Background(), "GET /")
	assert.True(t, span.SpanContext().IsSampled())
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name":"GET /"`)
	assert.Contains(t, buf.String(), config.AppName)
}

func TestNewTracerProvider_ZeroRatioDropsSpans(t *testing.T) {
	var buf bytes.Buffer
	tp, shutdown, err := NewTracerProvider(config.TracingConfig{Enabled: true, Exporter: "stdout", SampleRatio: 0}, &buf, nil)
	require.NoError(t, err)

	_, span := tp.Tracer(TracerName).Start(context.Background(), "GET /")
	assert.False(t, span.SpanContext().IsSampled())
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Empty(t, buf.String())
}

func TestNewTracerProvider_UnknownExporter(t *testing.T) {
	_, _, err := NewTracerProvider(config.TracingConfig{Enabled: true, Exporter: "jaeger"}, &bytes.Buffer{}, nil)
	assert.ErrorContains(t, err, "unsupported trace exporter")
}
