package blog

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/storefront/internal/blog/inbound"
	"github.com/shandysiswandi/storefront/internal/blog/outbound/db"
	"github.com/shandysiswandi/storefront/internal/blog/usecase"
	"github.com/shandysiswandi/storefront/internal/pkg/clock"
	"github.com/shandysiswandi/storefront/internal/pkg/config"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/router"
	"github.com/shandysiswandi/storefront/internal/pkg/storage"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
	"github.com/shandysiswandi/storefront/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Storage    storage.Storage            `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:     db.NewDB(dep.DBConn, dep.Instrument),
		Storage:    dep.Storage,
		Validator:  dep.Validator,
		UID:        dep.UID,
		UUID:       dep.UUID,
		Clock:      dep.Clock,
		Config:     dep.Config,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
