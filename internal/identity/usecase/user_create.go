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

type UserCreateInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,password"`
	FullName string `validate:"required,max=100"`
	Role     string `validate:"required,oneof=customer editor admin"`
}

// UserCreate seeds a password user. It is an operator command and runs without a session.
func (s *Usecase) UserCreate(ctx context.Context, in UserCreateInput) (int64, error) {
	ctx, span := s.startSpan(ctx, "UserCreate")
	defer span.End()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)

	if err := s.validator.Validate(in); err != nil {
		return 0, goerror.NewInvalidInput(err)
	}

	_, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if err == nil {
		slog.WarnContext(ctx, "user account is already exists", "email", in.Email)
		return 0, goerror.NewBusiness("user account with that email already exists", goerror.CodeConflict)
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return 0, goerror.NewServer(err)
	}

	hashed, err := s.bcrypt.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return 0, goerror.NewServer(err)
	}

	user := entity.NewUser{
		ID:       s.uid.Generate(),
		Email:    in.Email,
		FullName: in.FullName,
		Role:     in.Role,
		Status:   entity.UserStatusActive,
		Provider: jwt.MethodPassword,
	}

	if err := s.repoDB.CreateUser(ctx, user, string(hashed)); err != nil {
		if errors.Is(err, goerror.ErrConflict) {
			return 0, goerror.NewBusiness("user account with that email already exists", goerror.CodeConflict)
		}
		slog.ErrorContext(ctx, "failed to repo create user", "email", in.Email, "error", err)
		return 0, goerror.NewServer(err)
	}

	return user.ID, nil
}
