package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/stepup/entity"
)

type IssueInput struct {
	Identity string
}

type IssueOutput struct {
	ExpiresAt time.Time
}

// IssuePasscode generates a passcode for identity and stores its digest, replacing
// any live passcode of that identity. The only failure is an unavailable store.
func (s *Usecase) IssuePasscode(ctx context.Context, identity string) (*entity.Passcode, error) {
	ctx, span := s.startSpan(ctx, "IssuePasscode")
	defer span.End()

	code, err := s.otp.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate passcode", "error", err)
		return nil, goerror.NewServer(err)
	}

	digest, err := s.digest(identity, code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to digest passcode", "error", err)
		return nil, goerror.NewServer(err)
	}

	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.repoCache.SavePasscode(sctx, identity, digest, s.passcodeTTL); err != nil {
		return nil, storeError(ctx, "save", identity, err)
	}

	return &entity.Passcode{
		Identity:  identity,
		Code:      code,
		ExpiresAt: s.clock.Now().Add(s.passcodeTTL),
	}, nil
}

// Issue sends a fresh passcode to the session identity. It is also valid for a
// session that already stepped up; the session keeps its flag.
func (s *Usecase) Issue(ctx context.Context, in IssueInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "Issue")
	defer span.End()

	_, identity, err := s.sessionIdentity(ctx, in.Identity)
	if err != nil {
		return nil, err
	}

	pc, err := s.IssuePasscode(ctx, identity)
	if err != nil {
		return nil, err
	}

	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.PublishPasscodeIssued(ctx, *pc); err != nil {
			slog.ErrorContext(ctx, "failed to publish passcode issued", "identity", identity, "error", err)
		}
		return nil
	})

	return &IssueOutput{ExpiresAt: pc.ExpiresAt}, nil
}
