package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/storefront/internal/identity/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/clock"
	"github.com/shandysiswandi/storefront/internal/pkg/config"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/hash"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
	"github.com/shandysiswandi/storefront/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const defaultOAuthStateTTL = 10 * time.Minute

type repoDB interface {
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	CreateUser(ctx context.Context, user entity.NewUser, hash string) error
	UpsertProviderUser(ctx context.Context, user entity.NewUser) (*entity.User, error)
	UpdateUserPassword(ctx context.Context, id int64, hash string) error
}

type repoCache interface {
	SaveOAuthState(ctx context.Context, state, provider string, ttl time.Duration) error
	ConsumeOAuthState(ctx context.Context, state string) (string, error)
}

// OAuthProvider is one third-party identity provider.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*entity.OAuthProfile, error)
}

type Usecase struct {
	repoDB    repoDB
	repoCache repoCache
	providers map[string]OAuthProvider
	validator validator.Validator
	bcrypt    hash.Hash
	uid       uid.NumberID
	jwt       jwt.JWT
	denylist  jwt.Denylist
	clock     clock.Clocker
	ins       instrument.Instrumentation

	oauthStateTTL time.Duration
}

type Dependency struct {
	RepoDB     repoDB
	RepoCache  repoCache
	Providers  map[string]OAuthProvider
	Validator  validator.Validator
	Bcrypt     hash.Hash
	UID        uid.NumberID
	JWT        jwt.JWT
	Denylist   jwt.Denylist
	Clock      clock.Clocker
	Config     config.Config
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	uc := &Usecase{
		repoDB:        dep.RepoDB,
		repoCache:     dep.RepoCache,
		providers:     dep.Providers,
		validator:     dep.Validator,
		bcrypt:        dep.Bcrypt,
		uid:           dep.UID,
		jwt:           dep.JWT,
		denylist:      dep.Denylist,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		oauthStateTTL: defaultOAuthStateTTL,
	}

	if dep.Config != nil {
		if v := dep.Config.GetMinute("modules.identity.oauth_state_ttl_minutes"); v > 0 {
			uc.oauthStateTTL = v
		}
	}

	return uc
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

func (s *Usecase) ensureUserStatusAllowed(ctx context.Context, userID int64, status entity.UserStatus) error {
	if status.CanSignIn() {
		return nil
	}

	switch status.Ensure() {
	case entity.UserStatusUnknown:
		slog.WarnContext(ctx, "user account status is unrecognized", "user_id", userID)
		return goerror.NewBusiness("account status is unrecognized", goerror.CodeForbidden)

	case entity.UserStatusBanned:
		slog.WarnContext(ctx, "user account is banned", "user_id", userID)
		return goerror.NewBusiness("account is banned", goerror.CodeForbidden)

	case entity.UserStatusInactive:
		slog.WarnContext(ctx, "user account is inactive", "user_id", userID)
		return goerror.NewBusiness("account is inactive", goerror.CodeForbidden)

	default:
		return goerror.NewBusiness("account cannot sign in", goerror.CodeForbidden)
	}
}

// issueSession starts an AUTHENTICATED session (step_up unset) for user.
func (s *Usecase) issueSession(ctx context.Context, user *entity.User, method string) (*entity.Session, error) {
	token, clm, err := s.jwt.Generate(jwt.Subject{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Method: method,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate session token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &entity.Session{AccessToken: token, ExpiresAt: clm.ExpiresAt.Time}, nil
}
