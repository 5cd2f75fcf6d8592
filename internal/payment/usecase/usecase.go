package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shandysiswandi/storefront/internal/payment/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/clock"
	"github.com/shandysiswandi/storefront/internal/pkg/config"
	"github.com/shandysiswandi/storefront/internal/pkg/hash"
	"github.com/shandysiswandi/storefront/internal/pkg/idempotency"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
	"github.com/shandysiswandi/storefront/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultWebhookTolerance = 5 * time.Minute
	defaultRecentLimit      = 10
	defaultRedirectURL      = "https://pay.example.com/checkout/"
)

type repoDB interface {
	CreateCheckout(ctx context.Context, c entity.Checkout) error
	ListCheckoutsByUser(ctx context.Context, userID int64, limit int) ([]entity.Checkout, error)
	// SettleCheckout moves a pending checkout to status and reports whether it
	// changed anything. goerror.ErrNotFound when the reference is unknown.
	SettleCheckout(ctx context.Context, reference string, status entity.CheckoutStatus) (bool, error)
}

type Usecase struct {
	repoDB      repoDB
	idempotency idempotency.Idempotency
	signer      hash.Hash
	uid         uid.NumberID
	reference   uid.StringID
	validator   validator.Validator
	clock       clock.Clocker
	ins         instrument.Instrumentation

	webhookTolerance time.Duration
	recentLimit      int
	redirectURL      string
}

type Dependency struct {
	RepoDB      repoDB
	Idempotency idempotency.Idempotency
	// Signer holds the webhook signing secret shared with the processor.
	Signer     hash.Hash
	UID        uid.NumberID
	Reference  uid.StringID
	Validator  validator.Validator
	Clock      clock.Clocker
	Config     config.Config
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	uc := &Usecase{
		repoDB:           dep.RepoDB,
		idempotency:      dep.Idempotency,
		signer:           dep.Signer,
		uid:              dep.UID,
		reference:        dep.Reference,
		validator:        dep.Validator,
		clock:            dep.Clock,
		ins:              dep.Instrument,
		webhookTolerance: defaultWebhookTolerance,
		recentLimit:      defaultRecentLimit,
		redirectURL:      defaultRedirectURL,
	}

	if dep.Config != nil {
		if v := dep.Config.GetSecond("modules.payment.webhook_tolerance"); v > 0 {
			uc.webhookTolerance = v
		}
		if v := dep.Config.GetInt("modules.payment.recent_limit"); v > 0 {
			uc.recentLimit = v
		}
		if v := strings.TrimSpace(dep.Config.GetString("modules.payment.redirect_url")); v != "" {
			uc.redirectURL = v
		}
	}

	return uc
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("payment.usecase").Start(ctx, name)
}
