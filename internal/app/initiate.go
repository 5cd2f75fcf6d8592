package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/samber/lo"
	"github.com/shandysiswandi/storefront/internal/identity/outbound/oauth"
	"github.com/shandysiswandi/storefront/internal/identity/usecase"
	"github.com/shandysiswandi/storefront/internal/pkg/authz"
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
	"golang.org/x/time/rate"
)

const (
	mailDriverSMTP = "smtp"
	mailDriverLog  = "log"

	authzStorePostgres = "postgres"
	authzStoreMemory   = "memory"
)

func (a *App) initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to load .env file", "error", err)
		os.Exit(1)
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
	a.addCloser("Config", func(context.Context) error {
		return a.config.Close()
	})
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      lo.CoalesceOrEmpty(a.config.GetString("instrument.service_name"), "storefront"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
		LogLevel:         a.config.GetString("instrument.log_level"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}

	a.ins = ins
	a.addCloser("Instrument", func(ctx context.Context) error {
		return a.ins.Shutdown(ctx)
	})
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.ref = uid.NewULID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	a.hmac = hash.NewHMACSHA256(a.config.GetString("hash.hmac.secret"))
	a.bcrypt = hash.NewBcrypt(a.config.GetInt("hash.bcrypt.cost"), a.config.GetString("hash.bcrypt.pepper"))

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	snow, err := uid.NewSnowflake(a.config.GetInt64("app.node_id"))
	if err != nil {
		slog.Error("failed to init uid number snowflake", "error", err)
		os.Exit(1)
	}
	a.uid = snow

	gen, err := otp.NewNumeric(otp.DefaultDigits)
	if err != nil {
		slog.Error("failed to init passcode generator", "error", err)
		os.Exit(1)
	}
	a.otp = gen
}

func (a *App) initJWT() {
	defaultJWT, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(a.config.GetString("jwt.secret")),
		Issuer:    a.config.GetString("jwt.issuer"),
		Audiences: a.config.GetArray("jwt.audiences"),
		TTL:       lo.CoalesceOrEmpty(a.config.GetMinute("jwt.ttl_minutes"), time.Hour),
		Clock:     a.clock,
		UUID:      a.uuid,
	})
	if err != nil {
		slog.Error("failed to init jwt token", "error", err)
		os.Exit(1)
	}
	a.jwt = defaultJWT
}

func (a *App) initDatabase() {
	config, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		slog.Error("failed to parse DB connection string.", "error", err)
		os.Exit(1)
	}

	if v := a.config.GetInt("database.pool.max_conns"); v > 0 {
		config.MaxConns = int32(v) //nolint:gosec // bounded by operator config
	}
	if v := a.config.GetInt("database.pool.min_conns"); v > 0 {
		config.MinConns = int32(v) //nolint:gosec // bounded by operator config
	}
	if v := a.config.GetSecond("database.pool.max_conn_lifetime_seconds"); v > 0 {
		config.MaxConnLifetime = v
	}
	if v := a.config.GetSecond("database.pool.max_conn_idle_seconds"); v > 0 {
		config.MaxConnIdleTime = v
	}
	if v := a.config.GetSecond("database.pool.health_check_period_seconds"); v > 0 {
		config.HealthCheckPeriod = v
	}

	pool, err := pgxpool.NewWithConfig(a.ctx, config)
	if err != nil {
		slog.Error("failed to create DB connection pool", "error", err)
		os.Exit(1)
	}

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		slog.Error("failed to ping DB", "error", err)
		os.Exit(1)
	}

	a.dbConn = pool
	a.addCloser("Database", func(context.Context) error {
		a.dbConn.Close()

		return nil
	})
}

func (a *App) initCache() {
	opt, err := redis.ParseURL(a.config.GetString("redis.url"))
	if err != nil {
		slog.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("failed to init redis", "error", err)
		os.Exit(1)
	}

	a.cacheConn = rdb
	a.idemp = idempotency.New(a.cacheConn)
	a.denylist = jwt.NewRedisDenylist(a.cacheConn, a.clock)
	a.addCloser("Redis", func(context.Context) error {
		return a.cacheConn.Close()
	})
}

func (a *App) initMail() {
	driver := lo.CoalesceOrEmpty(strings.TrimSpace(a.config.GetString("mail.driver")), mailDriverSMTP)
	if driver == mailDriverLog {
		a.mail = mail.NewLog(a.config.GetString("mail.from"))
		return
	}

	mailer, err := mail.NewSMTP(mail.SMTPConfig{
		Host:               a.config.GetString("mail.host"),
		Port:               a.config.GetInt("mail.port"),
		Username:           a.config.GetString("mail.username"),
		Password:           a.config.GetString("mail.password"),
		From:               a.config.GetString("mail.from"),
		InsecureSkipVerify: a.config.GetBool("mail.insecure_skip_verify"),
	})
	if err != nil {
		slog.Error("failed to init mail", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.mail = mailer
	a.addCloser("Mail", func(context.Context) error {
		return a.mail.Close()
	})
}

func (a *App) initStorage() {
	driver := strings.TrimSpace(a.config.GetString("storage.driver"))
	if driver == "" {
		slog.Warn("storage driver is not configured, object storage is disabled")
		return
	}

	prefix := "storage." + strings.ToLower(driver) + "."
	stg, err := storage.New(a.ctx, driver, storage.Options{
		Endpoint:     strings.TrimSpace(a.config.GetString(prefix + "endpoint")),
		Region:       strings.TrimSpace(a.config.GetString(prefix + "region")),
		AccessKey:    strings.TrimSpace(a.config.GetString(prefix + "access_key")),
		SecretKey:    strings.TrimSpace(a.config.GetString(prefix + "secret_key")),
		SessionToken: strings.TrimSpace(a.config.GetString(prefix + "session_token")),
		Secure:       a.config.GetBool(prefix + "use_ssl"),
		PathStyle:    a.config.GetBool(prefix + "use_path_style"),
	})
	if err != nil {
		slog.Error("failed to init storage", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.storage = stg
	a.addCloser("Storage", func(context.Context) error {
		return a.storage.Close()
	})
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")
	client, err := messaging.New(driver, messaging.Options{
		NATS: messaging.NATSConfig{
			URL: a.config.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(lo.CoalesceOrEmpty(a.config.GetString("messaging.nats.name"), "storefront")),
				nats.MaxReconnects(lo.CoalesceOrEmpty(a.config.GetInt("messaging.nats.max_reconnects"), nats.DefaultMaxReconnect)),
				nats.Timeout(lo.CoalesceOrEmpty(a.config.GetSecond("messaging.nats.timeout_seconds"), nats.DefaultTimeout)),
				nats.ReconnectWait(lo.CoalesceOrEmpty(a.config.GetSecond("messaging.nats.reconnect_wait_seconds"), nats.DefaultReconnectWait)),
				nats.PingInterval(lo.CoalesceOrEmpty(a.config.GetSecond("messaging.nats.ping_interval_seconds"), nats.DefaultPingInterval)),
				nats.MaxPingsOutstanding(lo.CoalesceOrEmpty(a.config.GetInt("messaging.nats.max_pings_outstanding"), nats.DefaultMaxPingOut)),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		Kafka: messaging.KafkaConfig{
			Brokers:      a.config.GetArray("messaging.kafka.brokers"),
			WriteTimeout: a.config.GetSecond("messaging.kafka.write_timeout_seconds"),
		},
	})
	if err != nil {
		slog.Error("failed to init messaging", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.messaging = client
	a.addCloser("Messaging", func(context.Context) error {
		return a.messaging.Close()
	})
}

func (a *App) initCasbin() {
	// policy lines contain commas, so lines are separated by ";"
	seed := a.config.GetList("authz.policies", ";")

	var e *casbin.Enforcer
	var err error
	switch store := a.config.GetString("authz.store"); store {
	case "", authzStorePostgres:
		e, err = authz.NewStoredEnforcer(a.ctx, authz.NewAdapter(a.dbConn), seed)
	case authzStoreMemory:
		e, err = authz.NewEnforcer(seed)
	default:
		err = fmt.Errorf("unknown authz store %q", store)
	}
	if err != nil {
		slog.Error("failed to init casbin", "error", err)
		os.Exit(1)
	}

	a.casbin = e
}

func (a *App) initOAuth() {
	a.providers = make(map[string]usecase.OAuthProvider)

	for _, name := range []string{oauth.ProviderGoogle, oauth.ProviderGitHub} {
		prefix := "oauth." + name + "."
		clientID := a.config.GetString(prefix + "client_id")
		if clientID == "" {
			continue
		}

		p, err := oauth.New(name, oauth.Config{
			ClientID:     clientID,
			ClientSecret: a.config.GetString(prefix + "client_secret"),
			RedirectURL:  a.config.GetString(prefix + "redirect_url"),
		})
		if err != nil {
			slog.Error("failed to init oauth provider", "provider", name, "error", err)
			os.Exit(1)
		}
		a.providers[name] = p
	}
}

func (a *App) initHTTPServer() {
	if rps := a.config.GetFloat64("app.server.rate_limit.rps"); rps > 0 {
		a.limiter = router.NewRateLimiter(rate.Limit(rps), lo.CoalesceOrEmpty(a.config.GetInt("app.server.rate_limit.burst"), 1))
	}

	proxies, err := router.ParseTrustedProxies(a.config.GetArray("app.server.trusted_proxies"))
	if err != nil {
		slog.Error("failed to parse trusted proxies", "error", err)
		os.Exit(1)
	}

	a.router = router.NewRouter(router.Config{
		Config:         a.config,
		UUID:           a.uuid,
		JWT:            a.jwt,
		Denylist:       a.denylist,
		Instrument:     a.ins,
		Enforcer:       a.casbin,
		RateLimiter:    a.limiter,
		TrustedProxies: proxies,
	})
	a.router.PublicGET("/readyz", a.readiness)

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              lo.CoalesceOrEmpty(a.config.GetString("app.server.http.address"), ":8080"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: lo.CoalesceOrEmpty(a.config.GetSecond("app.server.http.read_header_timeout_seconds"), 5*time.Second),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}
