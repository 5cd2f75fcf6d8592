package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/storefront/internal/payment/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/idempotency"
)

var errInvalidSignature = goerror.NewBusiness("invalid webhook signature", goerror.CodeUnauthorized)

type WebhookInput struct {
	// Signature is the raw Payment-Signature header: t=<unix>,v1=<hex>[,v1=<hex>].
	Signature string
	Payload   []byte
}

type signatureHeader struct {
	timestamp string
	signs     []string
}

func parseSignature(header string) (signatureHeader, bool) {
	var sh signatureHeader

	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || v == "" {
			continue
		}

		switch k {
		case "t":
			sh.timestamp = v
		case "v1":
			sh.signs = append(sh.signs, v)
		}
	}

	return sh, sh.timestamp != "" && len(sh.signs) > 0
}

func (s *Usecase) verifySignature(ctx context.Context, in WebhookInput) error {
	sh, ok := parseSignature(in.Signature)
	if !ok {
		slog.WarnContext(ctx, "webhook signature header is malformed")
		return errInvalidSignature
	}

	unix, err := strconv.ParseInt(sh.timestamp, 10, 64)
	if err != nil {
		slog.WarnContext(ctx, "webhook signature timestamp is malformed", "timestamp", sh.timestamp)
		return errInvalidSignature
	}

	age := s.clock.Now().Sub(time.Unix(unix, 0))
	if age < 0 {
		age = -age
	}
	if age > s.webhookTolerance {
		slog.WarnContext(ctx, "webhook signature timestamp outside tolerance", "age", age.String())
		return errInvalidSignature
	}

	signed := sh.timestamp + "." + string(in.Payload)
	if !lo.SomeBy(sh.signs, func(sig string) bool { return s.signer.Verify(strings.ToLower(sig), signed) }) {
		slog.WarnContext(ctx, "webhook signature mismatch")
		return errInvalidSignature
	}

	return nil
}

// Webhook authenticates a processor callback and settles the referenced
// checkout. A given event id is processed at most once; redeliveries of an
// event that already settled are acknowledged without touching the database.
func (s *Usecase) Webhook(ctx context.Context, in WebhookInput) error {
	ctx, span := s.startSpan(ctx, "Webhook")
	defer span.End()

	if err := s.verifySignature(ctx, in); err != nil {
		return err
	}

	var event entity.WebhookEvent
	if err := json.Unmarshal(in.Payload, &event); err != nil {
		return goerror.NewInvalidFormat()
	}
	if event.ID == "" || event.Data.Reference == "" {
		return goerror.NewInvalidInput(nil, "id", "event id and data.reference are required")
	}

	status, ok := event.TargetStatus()
	if !ok {
		slog.InfoContext(ctx, "webhook event type ignored", "event_id", event.ID, "type", event.Type)
		return nil
	}

	err := s.idempotency.Exec(ctx, "payment:webhook:"+event.ID, func(ctx context.Context) error {
		changed, err := s.repoDB.SettleCheckout(ctx, event.Data.Reference, status)
		if err != nil {
			return err
		}
		if !changed {
			slog.InfoContext(ctx, "checkout already settled", "reference", event.Data.Reference)
		}
		return nil
	}, idempotency.WithRetryFailed())

	switch {
	case err == nil:
		slog.InfoContext(ctx, "checkout settled", "event_id", event.ID, "reference", event.Data.Reference, "status", status)
		return nil

	case errors.Is(err, idempotency.ErrAlreadyCompleted):
		slog.InfoContext(ctx, "webhook event already processed", "event_id", event.ID)
		return nil

	case errors.Is(err, idempotency.ErrAlreadyInProgress):
		return goerror.NewBusiness("webhook event is being processed", goerror.CodeConflict)

	case errors.Is(err, goerror.ErrNotFound):
		slog.WarnContext(ctx, "webhook references unknown checkout", "event_id", event.ID, "reference", event.Data.Reference)
		return goerror.NewBusiness("checkout not found", goerror.CodeNotFound)

	default:
		slog.ErrorContext(ctx, "failed to process webhook event", "event_id", event.ID, "error", err)
		return goerror.NewServer(err)
	}
}
