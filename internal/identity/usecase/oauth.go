package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/storefront/internal/identity/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
)

type OAuthStartInput struct {
	Provider string
}

type OAuthStartOutput struct {
	URL string
}

type OAuthCallbackInput struct {
	Provider string
	Code     string `validate:"required"`
	State    string `validate:"required"`
}

func (s *Usecase) provider(ctx context.Context, name string) (OAuthProvider, error) {
	p, ok := s.providers[name]
	if !ok {
		slog.WarnContext(ctx, "oauth provider is not configured", "provider", name)
		return nil, goerror.NewBusiness("sign-in provider not supported", goerror.CodeNotFound)
	}
	return p, nil
}

// OAuthStart returns the provider consent URL. The random state is kept in the
// cache and must come back on the callback.
func (s *Usecase) OAuthStart(ctx context.Context, in OAuthStartInput) (*OAuthStartOutput, error) {
	ctx, span := s.startSpan(ctx, "OAuthStart")
	defer span.End()

	p, err := s.provider(ctx, in.Provider)
	if err != nil {
		return nil, err
	}

	state := rand.Text()
	if err := s.repoCache.SaveOAuthState(ctx, state, in.Provider, s.oauthStateTTL); err != nil {
		slog.ErrorContext(ctx, "failed to save oauth state", "provider", in.Provider, "error", err)
		return nil, goerror.NewUnavailable(err, "Session store unavailable, please retry")
	}

	return &OAuthStartOutput{URL: p.AuthCodeURL(state)}, nil
}

// OAuthCallback finishes a provider sign-in: the state is consumed once, the
// code is exchanged for the profile and the matching user is created or updated.
func (s *Usecase) OAuthCallback(ctx context.Context, in OAuthCallbackInput) (*entity.Session, error) {
	ctx, span := s.startSpan(ctx, "OAuthCallback")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	p, err := s.provider(ctx, in.Provider)
	if err != nil {
		return nil, err
	}

	provider, err := s.repoCache.ConsumeOAuthState(ctx, in.State)
	if errors.Is(err, goerror.ErrNotFound) || (err == nil && provider != in.Provider) {
		slog.WarnContext(ctx, "oauth state is unknown or reused", "provider", in.Provider)
		return nil, goerror.NewBusiness("sign-in request expired, please try again", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to consume oauth state", "provider", in.Provider, "error", err)
		return nil, goerror.NewUnavailable(err, "Session store unavailable, please retry")
	}

	profile, err := p.Exchange(ctx, in.Code)
	if err != nil {
		slog.WarnContext(ctx, "failed to exchange oauth code", "provider", in.Provider, "error", err)
		return nil, goerror.NewBusiness("sign-in with provider failed", goerror.CodeUnauthorized)
	}

	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" {
		slog.WarnContext(ctx, "oauth profile has no verified email", "provider", in.Provider)
		return nil, goerror.NewBusiness("provider account has no verified email", goerror.CodeUnauthorized)
	}

	user, err := s.repoDB.UpsertProviderUser(ctx, entity.NewUser{
		ID:       s.uid.Generate(),
		Email:    email,
		FullName: strings.TrimSpace(profile.Name),
		Role:     entity.RoleCustomer,
		Status:   entity.UserStatusActive,
		Provider: in.Provider,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo upsert provider user", "provider", in.Provider, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.ensureUserStatusAllowed(ctx, user.ID, user.Status); err != nil {
		return nil, err
	}

	return s.issueSession(ctx, user, in.Provider)
}
