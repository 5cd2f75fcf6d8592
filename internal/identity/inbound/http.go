package inbound

import (
	"context"

	"github.com/shandysiswandi/storefront/internal/identity/entity"
	"github.com/shandysiswandi/storefront/internal/identity/usecase"
	"github.com/shandysiswandi/storefront/internal/pkg/router"
)

type uc interface {
	SignIn(ctx context.Context, in usecase.SignInInput) (*entity.Session, error)
	SignOut(ctx context.Context) error
	Session(ctx context.Context) (*usecase.SessionOutput, error)

	OAuthStart(ctx context.Context, in usecase.OAuthStartInput) (*usecase.OAuthStartOutput, error)
	OAuthCallback(ctx context.Context, in usecase.OAuthCallbackInput) (*entity.Session, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, secureCookie bool) {
	end := &HTTPEndpoint{uc: uc, secureCookie: secureCookie}

	r.PublicPOST("/api/v1/identity/signin", end.SignIn, r.Throttle())
	r.POST("/api/v1/identity/signout", end.SignOut)
	r.GET("/api/v1/identity/session", end.Session)

	r.PublicGET("/api/v1/identity/oauth/:provider", end.OAuthStart)
	r.PublicGET("/api/v1/identity/oauth/:provider/callback", end.OAuthCallback)
}
