package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/storefront/internal/blog"
	"github.com/shandysiswandi/storefront/internal/identity"
	"github.com/shandysiswandi/storefront/internal/notification"
	"github.com/shandysiswandi/storefront/internal/payment"
	"github.com/shandysiswandi/storefront/internal/stepup"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.identity.enabled") {
		if err := identity.New(identity.Dependency{
			DBConn:     a.dbConn,
			CacheConn:  a.cacheConn,
			Router:     a.router,
			Config:     a.config,
			Instrument: a.ins,
			Providers:  a.providers,
			UID:        a.uid,
			Bcrypt:     a.bcrypt,
			Clock:      a.clock,
			Validator:  a.validator,
			JWT:        a.jwt,
			Denylist:   a.denylist,
		}); err != nil {
			slog.Error("failed to init module identity", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.stepup.enabled") {
		if err := stepup.New(stepup.Dependency{
			CacheConn:  a.cacheConn,
			Messaging:  a.messaging,
			Goroutine:  a.goroutine,
			Router:     a.router,
			Config:     a.config,
			Instrument: a.ins,
			HMAC:       a.hmac,
			OTP:        a.otp,
			Clock:      a.clock,
			Validator:  a.validator,
			JWT:        a.jwt,
		}); err != nil {
			slog.Error("failed to init module stepup", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.payment.enabled") {
		if err := payment.New(payment.Dependency{
			DBConn:      a.dbConn,
			Idempotency: a.idemp,
			Router:      a.router,
			Config:      a.config,
			Instrument:  a.ins,
			UID:         a.uid,
			Reference:   a.ref,
			Clock:       a.clock,
			Validator:   a.validator,
		}); err != nil {
			slog.Error("failed to init module payment", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.blog.enabled") {
		if err := blog.New(blog.Dependency{
			DBConn:     a.dbConn,
			Storage:    a.storage,
			Router:     a.router,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			Clock:      a.clock,
			Validator:  a.validator,
		}); err != nil {
			slog.Error("failed to init module blog", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:        a.ctx,
			Messaging:  a.messaging,
			Mail:       a.mail,
			Goroutine:  a.goroutine,
			Config:     a.config,
			Instrument: a.ins,
			UUID:       a.uuid,
			Clock:      a.clock,
			Validator:  a.validator,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}
