package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
)

// SignOut revokes the current session token until it would have expired. Both
// AUTHENTICATED and STEPPED_UP sessions end up UNAUTHENTICATED.
func (s *Usecase) SignOut(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "SignOut")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	if err := s.denylist.Revoke(ctx, clm.ID, clm.ExpiresAt.Time); err != nil {
		slog.ErrorContext(ctx, "failed to revoke session token", "user_id", clm.UserID, "error", err)
		return goerror.NewUnavailable(err, "Session store unavailable, please retry")
	}

	return nil
}
