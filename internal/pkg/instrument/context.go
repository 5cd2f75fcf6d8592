package instrument

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

type correlationIDKey struct{}

// SetCorrelationID returns a copy of ctx carrying the request correlation id.
func SetCorrelationID(ctx context.Context, cID string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, cID)
}

// GetCorrelationID returns the correlation id stored in ctx, or "" when absent.
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	cID, _ := ctx.Value(correlationIDKey{}).(string)
	return cID
}

// InjectTrace writes the active trace context of ctx into headers so a
// consumer on the other side of the broker continues the same trace.
func InjectTrace(ctx context.Context, headers map[string]string) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(headers))
}

// ExtractTrace returns ctx with the remote trace context found in headers.
func ExtractTrace(ctx context.Context, headers map[string]string) context.Context {
	if len(headers) == 0 {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(headers))
}
