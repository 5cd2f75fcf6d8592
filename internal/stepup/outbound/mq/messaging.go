package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/messaging"
	"github.com/shandysiswandi/storefront/internal/shared/event"
	"github.com/shandysiswandi/storefront/internal/stepup/entity"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishPasscodeIssued(ctx context.Context, pc entity.Passcode) error {
	ctx, span := m.ins.Tracer("stepup.outbound.mq").Start(ctx, "PublishPasscodeIssued",
		trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()

	body, err := json.Marshal(event.PasscodeIssuedMessage{
		Identity:  pc.Identity,
		Code:      pc.Code,
		ExpiresAt: pc.ExpiresAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	headers := map[string]string{event.HeaderCorrelationID: instrument.GetCorrelationID(ctx)}
	instrument.InjectTrace(ctx, headers)

	if err := m.client.Publish(ctx, event.PasscodeIssuedDestination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(pc.Identity),
		Headers: headers,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
