package email

import (
	"context"
	"errors"

	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const scope = "notification.outbound.email"

// Mail delivers notification emails and counts each delivery by outcome.
type Mail struct {
	client     mail.Mail
	tracer     trace.Tracer
	deliveries metric.Int64Counter
}

func New(client mail.Mail, ins instrument.Instrumentation) *Mail {
	m := &Mail{client: client, tracer: ins.Tracer(scope)}

	// a failed instrument registration only costs the counter
	counter, err := ins.Meter(scope).Int64Counter("notification.email.deliveries",
		metric.WithDescription("Notification emails handed to the mail driver, by outcome."))
	if err == nil {
		m.deliveries = counter
	}

	return m
}

func (m *Mail) Send(ctx context.Context, msg mail.Message) error {
	ctx, span := m.tracer.Start(ctx, "Send", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(attribute.Int("mail.recipients", len(msg.To)+len(msg.Cc)+len(msg.Bcc)))

	err := m.client.Send(ctx, msg)
	m.count(ctx, outcome(err))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (m *Mail) count(ctx context.Context, result string) {
	if m.deliveries == nil {
		return
	}
	m.deliveries.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", result)))
}

// outcome separates messages the driver refused outright from transport failures.
func outcome(err error) string {
	switch {
	case err == nil:
		return "sent"
	case errors.Is(err, mail.ErrNoRecipients), errors.Is(err, mail.ErrNoSender):
		return "rejected"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "failed"
	}
}
