package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/storefront/internal/identity/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
)

type SignInInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func (s *Usecase) SignIn(ctx context.Context, in SignInInput) (*entity.Session, error) {
	ctx, span := s.startSpan(ctx, "SignIn")
	defer span.End()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "email", in.Email)
		return nil, goerror.NewBusiness("invalid email or password", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if user.Password == "" || !s.bcrypt.Verify(user.Password, in.Password) {
		slog.WarnContext(ctx, "password user account not match", "user_id", user.ID)
		return nil, goerror.NewBusiness("invalid email or password", goerror.CodeUnauthorized)
	}

	if err := s.ensureUserStatusAllowed(ctx, user.ID, user.Status); err != nil {
		return nil, err
	}

	s.rehashPassword(ctx, user, in.Password)

	return s.issueSession(ctx, user, jwt.MethodPassword)
}

// rehashPassword upgrades a stored hash made with an outdated work factor.
// Failure is logged only; the sign-in itself already succeeded.
func (s *Usecase) rehashPassword(ctx context.Context, user *entity.User, plaintext string) {
	rh, ok := s.bcrypt.(interface{ NeedsRehash(hashed string) bool })
	if !ok || !rh.NeedsRehash(user.Password) {
		return
	}

	hashed, err := s.bcrypt.Hash(plaintext)
	if err != nil {
		slog.WarnContext(ctx, "failed to rehash password", "user_id", user.ID, "error", err)
		return
	}

	if err := s.repoDB.UpdateUserPassword(ctx, user.ID, string(hashed)); err != nil {
		slog.WarnContext(ctx, "failed to repo update user password", "user_id", user.ID, "error", err)
	}
}
