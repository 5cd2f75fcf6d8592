package usecase

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/storefront/internal/notification/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/mail"
)

type ConsumePasscodeIssuedInput struct {
	Identity  string    `validate:"required,email"`
	Code      string    `validate:"required,len=6,numeric"`
	ExpiresAt time.Time `validate:"required"`
}

// ConsumePasscodeIssued emails the passcode to the identity. Malformed and
// already expired events are dropped. Send failures are retried with
// exponential backoff; the last error is returned once attempts run out.
func (s *Usecase) ConsumePasscodeIssued(ctx context.Context, in ConsumePasscodeIssuedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumePasscodeIssued")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "identity", in.Identity, "error", err)
		return nil
	}

	left := in.ExpiresAt.Sub(s.clock.Now())
	if left <= 0 {
		slog.WarnContext(ctx, "passcode already expired, email skipped", "identity", in.Identity)
		return nil
	}

	data := entity.PasscodeEmail{
		Identity:  in.Identity,
		Code:      in.Code,
		ExpiresAt: in.ExpiresAt,
		Minutes:   int(math.Ceil(left.Minutes())),
		AppName:   s.appName,
		Year:      s.clock.Now().Format("2006"),
	}

	var html, text bytes.Buffer
	if err := s.htmlTpl.Execute(&html, data); err != nil {
		slog.ErrorContext(ctx, "failed to render passcode email html", "error", err)
		return nil
	}
	if err := s.textTpl.Execute(&text, data); err != nil {
		slog.ErrorContext(ctx, "failed to render passcode email text", "error", err)
		return nil
	}

	msg := mail.Message{
		To:       []string{in.Identity},
		Subject:  "Your " + s.appName + " verification code",
		TextBody: text.String(),
		HTMLBody: html.String(),
	}

	b := retry.WithMaxRetries(s.sendAttempts-1, retry.NewExponential(s.retryBase))

	attempt := 0
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := s.repoMail.Send(ctx, msg); err != nil {
			slog.WarnContext(ctx, "failed to send passcode email", "identity", in.Identity, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "giving up on passcode email", "identity", in.Identity, "attempts", attempt, "error", err)
		return err
	}

	slog.InfoContext(ctx, "passcode email sent", "identity", in.Identity, "attempts", attempt)
	return nil
}
