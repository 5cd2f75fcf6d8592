package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/lo"

	blogusecase "github.com/shandysiswandi/storefront/internal/blog/usecase"
	"github.com/shandysiswandi/storefront/internal/identity"
	"github.com/shandysiswandi/storefront/internal/identity/usecase"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/migration"
	"github.com/shandysiswandi/storefront/internal/pkg/router"
)

const readinessTimeout = 2 * time.Second

// Start launches the HTTP server and returns a channel closed on shutdown.
func (a *App) Start() <-chan struct{} {
	terminateChan := make(chan struct{})

	go func() {
		slog.Info("http server listening", "address", a.httpServer.Addr)

		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen and serve http server", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(sigint)

		<-sigint

		if a.cancel != nil {
			a.cancel()
		}

		close(terminateChan)

		slog.Info("application gracefully shutdown")
	}()

	return terminateChan
}

// Serve runs the HTTP server on the provided listener for tests.
func (a *App) Serve(l net.Listener) <-chan error {
	errChan := make(chan error, 1)

	go func() {
		errChan <- a.httpServer.Serve(l)
		close(errChan)
	}()

	return errChan
}

// Stop gracefully shuts down the server and closes resources.
func (a *App) Stop(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", "HTTP Server", "error", err)
		}
	}

	if a.goroutine != nil {
		slog.InfoContext(ctx, "waiting for all goroutine to finish")
		if err := a.goroutine.Wait(); err != nil {
			slog.ErrorContext(ctx, "error from goroutines executions", "error", err)
		}
		slog.InfoContext(ctx, "all goroutines have finished successfully")
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		closer := a.closers[i]
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}
}

// Migrate applies pending schema migrations.
func (a *App) Migrate(ctx context.Context) ([]string, error) {
	return migration.Up(ctx, a.dbConn)
}

// CreateUser seeds a password account.
func (a *App) CreateUser(ctx context.Context, in usecase.UserCreateInput) (int64, error) {
	uc := identity.NewUserCreator(identity.Dependency{
		DBConn:     a.dbConn,
		Config:     a.config,
		Instrument: a.ins,
		UID:        a.uid,
		Bcrypt:     a.bcrypt,
		Clock:      a.clock,
		Validator:  a.validator,
	})

	return uc.UserCreate(ctx, in)
}

type readinessResponse struct {
	Status string `json:"status"`
}

func (readinessResponse) Message() string { return "service is ready" }

type pinger interface {
	Ping(ctx context.Context) error
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func (a *App) readiness(r *router.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := map[string]pinger{}
	if a.dbConn != nil {
		checks["postgres"] = a.dbConn
	}
	if a.cacheConn != nil {
		checks["redis"] = pingFunc(func(ctx context.Context) error {
			return a.cacheConn.Ping(ctx).Err()
		})
	}

	if a.storage != nil && a.config.GetBool("modules.blog.enabled") {
		bucket := lo.CoalesceOrEmpty(a.config.GetString("modules.blog.cover_bucket"), blogusecase.DefaultCoverBucket)
		checks["storage"] = pingFunc(func(ctx context.Context) error {
			ok, err := a.storage.BucketExists(ctx, bucket)
			if err == nil && !ok {
				err = fmt.Errorf("bucket %q does not exist", bucket)
			}
			return err
		})
	}

	return checkReadiness(ctx, checks)
}

func checkReadiness(ctx context.Context, checks map[string]pinger) (any, error) {
	for name, p := range checks {
		if err := p.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "readiness check failed", "dependency", name, "error", err)
			return nil, goerror.NewUnavailable(fmt.Errorf("%s: %w", name, err), name+" is unavailable")
		}
	}

	return readinessResponse{Status: "ok"}, nil
}
