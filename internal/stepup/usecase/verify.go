package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/otp"
	"github.com/shandysiswandi/storefront/internal/stepup/entity"
)

type VerifyInput struct {
	Identity string
	Code     string
}

type VerifyOutput struct {
	Verified    bool
	AccessToken string
	ExpiresAt   time.Time
}

// VerifyPasscode reports whether code is the live passcode of identity and, when
// it is, consumes it. Unknown, expired and consumed passcodes are all a plain
// false. The mismatch that reaches the attempt limit burns the passcode and
// fails with TooManyRequest.
func (s *Usecase) VerifyPasscode(ctx context.Context, identity, code string) (bool, error) {
	ctx, span := s.startSpan(ctx, "VerifyPasscode")
	defer span.End()

	if !otp.WellFormed(code, otp.DefaultDigits) {
		return false, goerror.NewInvalidFormat("Passcode must be exactly 6 digits")
	}

	digest, err := s.digest(identity, code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to digest passcode", "error", err)
		return false, goerror.NewServer(err)
	}

	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	res, err := s.repoCache.ConsumePasscode(sctx, identity, digest, s.maxAttempts)
	if err != nil {
		return false, storeError(ctx, "consume", identity, err)
	}

	switch res {
	case entity.ConsumeMatched:
		return true, nil
	case entity.ConsumeLocked:
		slog.WarnContext(ctx, "passcode burned after too many attempts", "identity", identity)
		return false, goerror.NewBusiness("Too many attempts, request a new passcode", goerror.CodeTooManyRequest)
	default:
		slog.WarnContext(ctx, "passcode verification failed", "identity", identity, "result", res.String())
		return false, nil
	}
}

// Verify checks the submitted passcode and, on success, re-signs the session
// with step_up set. Every other claim is carried over unchanged.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	clm, identity, err := s.sessionIdentity(ctx, in.Identity)
	if err != nil {
		return nil, err
	}

	ok, err := s.VerifyPasscode(ctx, identity, in.Code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &VerifyOutput{Verified: false}, nil
	}

	token, err := s.jwt.Sign(clm.WithStepUp())
	if err != nil {
		slog.ErrorContext(ctx, "failed to re-sign session with step-up", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &VerifyOutput{
		Verified:    true,
		AccessToken: token,
		ExpiresAt:   clm.ExpiresAt.Time,
	}, nil
}
