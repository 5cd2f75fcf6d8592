package instrument

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestTracePropagation(t *testing.T) {
	ins, err := New(context.Background(), &Config{ServiceName: "storefront"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ins.Shutdown(context.Background()) })

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x4b, 0xf9, 0x2f, 0x35, 0x77, 0xb3, 0x4d, 0xa6, 0xa3, 0xce, 0x92, 0x9d, 0x0e, 0x0e, 0x47, 0x36},
		SpanID:     trace.SpanID{0x00, 0xf0, 0x67, 0xaa, 0x0b, 0xa9, 0x02, 0xb7},
		TraceFlags: trace.FlagsSampled,
	})

	headers := map[string]string{}
	InjectTrace(trace.ContextWithSpanContext(context.Background(), sc), headers)
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", headers["traceparent"])

	got := trace.SpanContextFromContext(ExtractTrace(context.Background(), headers))
	assert.Equal(t, sc.TraceID(), got.TraceID())
	assert.True(t, got.IsRemote())

	assert.False(t, trace.SpanContextFromContext(ExtractTrace(context.Background(), nil)).IsValid())
}
