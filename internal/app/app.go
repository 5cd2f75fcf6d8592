package app

import (
	"context"
	"net/http"

	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/storefront/internal/identity/usecase"
	"github.com/shandysiswandi/storefront/internal/pkg/clock"
	"github.com/shandysiswandi/storefront/internal/pkg/config"
	"github.com/shandysiswandi/storefront/internal/pkg/goroutine"
	"github.com/shandysiswandi/storefront/internal/pkg/hash"
	"github.com/shandysiswandi/storefront/internal/pkg/idempotency"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
	"github.com/shandysiswandi/storefront/internal/pkg/mail"
	"github.com/shandysiswandi/storefront/internal/pkg/messaging"
	"github.com/shandysiswandi/storefront/internal/pkg/otp"
	"github.com/shandysiswandi/storefront/internal/pkg/router"
	"github.com/shandysiswandi/storefront/internal/pkg/storage"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
	"github.com/shandysiswandi/storefront/internal/pkg/validator"
)

type closer struct {
	name string
	fn   func(context.Context) error
}

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	bcrypt    hash.Hash
	uid       uid.NumberID
	ref       uid.StringID
	uuid      uid.StringID
	otp       otp.Generator
	jwt       jwt.JWT
	denylist  jwt.Denylist

	// resources
	dbConn    *pgxpool.Pool
	cacheConn redis.UniversalClient
	idemp     idempotency.Idempotency
	mail      mail.Mail
	messaging messaging.Messaging
	storage   storage.Storage
	casbin    *casbin.Enforcer
	limiter   *router.RateLimiter
	providers map[string]usecase.OAuthProvider

	// server
	router     *router.Router
	httpServer *http.Server

	// closed in reverse order of registration
	closers []closer
}

func newApp() *App {
	ctx, cancel := context.WithCancel(context.Background())

	return &App{
		ctx:    ctx,
		cancel: cancel,
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	app := newApp()

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initStorage()
	app.initMessaging()
	app.initCasbin()
	app.initOAuth()
	app.initHTTPServer()
	app.initModules()

	return app
}

// NewMigrator wires only configuration, telemetry and the database.
func NewMigrator() *App {
	app := newApp()

	app.initConfig()
	app.initInstrument()
	app.initDatabase()

	return app
}

// NewAdmin wires what out-of-band account management needs.
func NewAdmin() *App {
	app := newApp()

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initDatabase()

	return app
}

func (a *App) addCloser(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}
