package inbound

import (
	"context"

	"github.com/shandysiswandi/storefront/internal/pkg/router"
	"github.com/shandysiswandi/storefront/internal/stepup/usecase"
)

type uc interface {
	Issue(ctx context.Context, in usecase.IssueInput) (*usecase.IssueOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)
}

// RegisterHTTPEndpoint mounts the step-up routes. secureCookie marks the
// refreshed session cookie as Secure.
func RegisterHTTPEndpoint(r *router.Router, uc uc, secureCookie bool) {
	end := &HTTPEndpoint{uc: uc, secureCookie: secureCookie}

	r.POST("/api/v1/stepup/otp/issue", end.Issue, r.Throttle())
	r.POST("/api/v1/stepup/otp/verify", end.Verify, r.Throttle())
}
