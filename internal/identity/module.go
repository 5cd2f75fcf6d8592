package identity

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/storefront/internal/identity/inbound"
	"github.com/shandysiswandi/storefront/internal/identity/outbound/cache"
	"github.com/shandysiswandi/storefront/internal/identity/outbound/db"
	"github.com/shandysiswandi/storefront/internal/identity/usecase"
	"github.com/shandysiswandi/storefront/internal/pkg/clock"
	"github.com/shandysiswandi/storefront/internal/pkg/config"
	"github.com/shandysiswandi/storefront/internal/pkg/hash"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
	"github.com/shandysiswandi/storefront/internal/pkg/router"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
	"github.com/shandysiswandi/storefront/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool                    `validate:"required"`
	CacheConn  redis.UniversalClient            `validate:"required"`
	Router     *router.Router                   `validate:"required"`
	Config     config.Config                    `validate:"required"`
	Instrument instrument.Instrumentation       `validate:"required"`
	Providers  map[string]usecase.OAuthProvider `validate:"-"`
	UID        uid.NumberID                     `validate:"required"`
	Bcrypt     hash.Hash                        `validate:"required"`
	Clock      clock.Clocker                    `validate:"required"`
	Validator  validator.Validator              `validate:"required"`
	JWT        jwt.JWT                          `validate:"required"`
	Denylist   jwt.Denylist                     `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:     db.NewDB(dep.DBConn, dep.Instrument),
		RepoCache:  cache.NewCache(dep.CacheConn),
		Providers:  dep.Providers,
		Validator:  dep.Validator,
		Bcrypt:     dep.Bcrypt,
		UID:        dep.UID,
		JWT:        dep.JWT,
		Denylist:   dep.Denylist,
		Clock:      dep.Clock,
		Config:     dep.Config,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Config.GetBool("app.server.secure_cookie"))

	return nil
}

// NewUserCreator builds the account usecase for callers outside HTTP, such as
// the command line. Only DBConn, Config, Instrument, UID, Bcrypt, Clock and
// Validator are read from dep.
func NewUserCreator(dep Dependency) *usecase.Usecase {
	return usecase.New(usecase.Dependency{
		RepoDB:     db.NewDB(dep.DBConn, dep.Instrument),
		Validator:  dep.Validator,
		Bcrypt:     dep.Bcrypt,
		UID:        dep.UID,
		Clock:      dep.Clock,
		Config:     dep.Config,
		Instrument: dep.Instrument,
	})
}
