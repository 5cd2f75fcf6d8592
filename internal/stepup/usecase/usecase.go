package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/storefront/internal/pkg/clock"
	"github.com/shandysiswandi/storefront/internal/pkg/config"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/goroutine"
	"github.com/shandysiswandi/storefront/internal/pkg/hash"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
	"github.com/shandysiswandi/storefront/internal/pkg/otp"
	"github.com/shandysiswandi/storefront/internal/stepup/entity"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultPasscodeTTL  = 300 * time.Second
	defaultStoreTimeout = 3 * time.Second
	minStoreTimeout     = 2 * time.Second
	maxStoreTimeout     = 5 * time.Second
	defaultMaxAttempts  = 5
)

type repoCache interface {
	SavePasscode(ctx context.Context, identity, digest string, ttl time.Duration) error
	ConsumePasscode(ctx context.Context, identity, digest string, maxAttempts int) (entity.ConsumeResult, error)
}

type repoMessaging interface {
	PublishPasscodeIssued(ctx context.Context, pc entity.Passcode) error
}

type Usecase struct {
	repoCache     repoCache
	repoMessaging repoMessaging
	otp           otp.Generator
	hmac          hash.Hash
	jwt           jwt.JWT
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager

	passcodeTTL  time.Duration
	storeTimeout time.Duration
	maxAttempts  int
}

type Dependency struct {
	RepoCache     repoCache
	RepoMessaging repoMessaging
	OTP           otp.Generator
	HMAC          hash.Hash
	JWT           jwt.JWT
	Clock         clock.Clocker
	Config        config.Config
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	uc := &Usecase{
		repoCache:     dep.RepoCache,
		repoMessaging: dep.RepoMessaging,
		otp:           dep.OTP,
		hmac:          dep.HMAC,
		jwt:           dep.JWT,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
		passcodeTTL:   defaultPasscodeTTL,
		storeTimeout:  defaultStoreTimeout,
		maxAttempts:   defaultMaxAttempts,
	}

	if dep.Config != nil {
		if v := dep.Config.GetSecond("modules.stepup.passcode_ttl"); v > 0 {
			uc.passcodeTTL = v
		}
		if v := dep.Config.GetSecond("modules.stepup.store_timeout"); v > 0 {
			uc.storeTimeout = min(max(v, minStoreTimeout), maxStoreTimeout)
		}
		if v := dep.Config.GetInt("modules.stepup.max_attempts"); v > 0 {
			uc.maxAttempts = v
		}
	}

	return uc
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("stepup.usecase").Start(ctx, name)
}

// digest binds the code to its identity so a stored value is useless for any other key.
func (s *Usecase) digest(identity, code string) (string, error) {
	d, err := s.hmac.Hash(identity + ":" + code)
	if err != nil {
		return "", err
	}
	return string(d), nil
}

// sessionIdentity returns the session claims and the identity the request acts on.
// A requested identity must belong to the session.
func (s *Usecase) sessionIdentity(ctx context.Context, requested string) (*jwt.Claims, string, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, "", goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	requested = strings.TrimSpace(requested)
	if requested != "" && !strings.EqualFold(requested, clm.UserEmail) {
		slog.WarnContext(ctx, "step-up identity does not match session", "user_id", clm.UserID)
		return nil, "", goerror.NewBusiness("Identity does not match session", goerror.CodeForbidden)
	}

	return clm, clm.UserEmail, nil
}

func storeError(ctx context.Context, op, identity string, err error) error {
	slog.ErrorContext(ctx, "failed to "+op+" passcode", "identity", identity, "error", err)
	return goerror.NewUnavailable(err, "Verification service unavailable, please retry")
}
