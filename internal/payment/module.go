package payment

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
	"github.com/shandysiswandi/storefront/internal/payment/inbound"
	"github.com/shandysiswandi/storefront/internal/payment/outbound/db"
	"github.com/shandysiswandi/storefront/internal/payment/usecase"
	"github.com/shandysiswandi/storefront/internal/pkg/clock"
	"github.com/shandysiswandi/storefront/internal/pkg/config"
	"github.com/shandysiswandi/storefront/internal/pkg/hash"
	"github.com/shandysiswandi/storefront/internal/pkg/idempotency"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/router"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
	"github.com/shandysiswandi/storefront/internal/pkg/validator"
)

type Dependency struct {
	DBConn      *pgxpool.Pool              `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	Reference   uid.StringID               `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:      db.NewDB(dep.DBConn, dep.Instrument),
		Idempotency: dep.Idempotency,
		Signer:      hash.NewHMACSHA256(dep.Config.GetString("modules.payment.webhook_secret")),
		UID:         dep.UID,
		Reference:   dep.Reference,
		Validator:   dep.Validator,
		Clock:       dep.Clock,
		Config:      dep.Config,
		Instrument:  dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, inbound.Pages{
		SignIn: lo.CoalesceOrEmpty(dep.Config.GetString("modules.payment.signin_page"), "/auth/signin"),
		StepUp: lo.CoalesceOrEmpty(dep.Config.GetString("modules.payment.stepup_page"), "/auth/verify"),
	})

	return nil
}
