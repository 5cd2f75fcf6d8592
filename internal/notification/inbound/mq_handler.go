package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/storefront/internal/notification/usecase"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/messaging"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
	"github.com/shandysiswandi/storefront/internal/shared/event"
	"go.opentelemetry.io/otel/trace"
)

type uc interface {
	ConsumePasscodeIssued(ctx context.Context, in usecase.ConsumePasscodeIssuedInput) error
}

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cID := msg.Header(event.HeaderCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// PasscodeIssuedNotification handles stepup.passcode.issued. The body carries
// the plaintext passcode and is never logged.
func (h *MQHandler) PasscodeIssuedNotification(ctx context.Context, msg messaging.Message) error {
	ctx = instrument.ExtractTrace(h.ensureCorrelationID(ctx, msg), msg.Headers)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "PasscodeIssuedNotification",
		trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	slog.InfoContext(ctx, "consume: passcode issued notification", "msg_id", msg.ID)

	var payload event.PasscodeIssuedMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of passcode issued notification", "msg_id", msg.ID, "error", err)
		return nil
	}

	if err := h.uc.ConsumePasscodeIssued(ctx, usecase.ConsumePasscodeIssuedInput{
		Identity:  payload.Identity,
		Code:      payload.Code,
		ExpiresAt: payload.ExpiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume passcode issued", "identity", payload.Identity, "error", err)
		return err
	}

	return nil
}
