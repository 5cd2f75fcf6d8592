package inbound

import (
	"context"

	"github.com/shandysiswandi/storefront/internal/payment/entity"
	"github.com/shandysiswandi/storefront/internal/payment/usecase"
	"github.com/shandysiswandi/storefront/internal/pkg/router"
)

type uc interface {
	CreateCheckout(ctx context.Context, in usecase.CreateCheckoutInput) (*usecase.CreateCheckoutOutput, error)
	ListCheckouts(ctx context.Context) ([]entity.Checkout, error)
	Webhook(ctx context.Context, in usecase.WebhookInput) error
}

// Pages holds the browser locations the checkout page redirects to.
type Pages struct {
	SignIn string
	StepUp string
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, pages Pages) {
	end := &HTTPEndpoint{uc: uc}

	r.PublicGET("/payment/checkout", end.CheckoutPage, router.RequireStepUpPage(pages.SignIn, pages.StepUp))
	r.POST("/api/v1/payment/checkouts", end.CreateCheckout, router.RequireStepUp())
	r.PublicPOST("/api/v1/payment/webhook", end.Webhook)
}
