package notification

import (
	"context"

	"github.com/shandysiswandi/storefront/internal/notification/inbound"
	"github.com/shandysiswandi/storefront/internal/notification/outbound/email"
	"github.com/shandysiswandi/storefront/internal/notification/usecase"
	"github.com/shandysiswandi/storefront/internal/pkg/clock"
	"github.com/shandysiswandi/storefront/internal/pkg/config"
	"github.com/shandysiswandi/storefront/internal/pkg/goroutine"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/mail"
	"github.com/shandysiswandi/storefront/internal/pkg/messaging"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
	"github.com/shandysiswandi/storefront/internal/pkg/validator"
)

type Dependency struct {
	// Ctx bounds the consumers; without it no consumer is started.
	Ctx        context.Context            `validate:"-"`
	Messaging  messaging.Consumer         `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc, err := usecase.New(usecase.Dependency{
		RepoMail:   email.New(dep.Mail, dep.Instrument),
		Validator:  dep.Validator,
		Clock:      dep.Clock,
		Config:     dep.Config,
		Instrument: dep.Instrument,
	})
	if err != nil {
		return err
	}

	if dep.Ctx != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)
	}

	return nil
}
