package stepup

import (
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/storefront/internal/pkg/clock"
	"github.com/shandysiswandi/storefront/internal/pkg/config"
	"github.com/shandysiswandi/storefront/internal/pkg/goroutine"
	"github.com/shandysiswandi/storefront/internal/pkg/hash"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
	"github.com/shandysiswandi/storefront/internal/pkg/messaging"
	"github.com/shandysiswandi/storefront/internal/pkg/otp"
	"github.com/shandysiswandi/storefront/internal/pkg/router"
	"github.com/shandysiswandi/storefront/internal/pkg/validator"
	"github.com/shandysiswandi/storefront/internal/stepup/inbound"
	"github.com/shandysiswandi/storefront/internal/stepup/outbound/cache"
	"github.com/shandysiswandi/storefront/internal/stepup/outbound/mq"
	"github.com/shandysiswandi/storefront/internal/stepup/usecase"
)

type Dependency struct {
	CacheConn  redis.UniversalClient      `validate:"required"`
	Messaging  messaging.Publisher        `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	OTP        otp.Generator              `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoCache:     cache.NewRedis(dep.CacheConn, dep.Instrument),
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		OTP:           dep.OTP,
		HMAC:          dep.HMAC,
		JWT:           dep.JWT,
		Clock:         dep.Clock,
		Config:        dep.Config,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Config.GetBool("app.server.secure_cookie"))

	return nil
}
