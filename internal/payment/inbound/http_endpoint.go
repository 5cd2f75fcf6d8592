package inbound

import (
	"github.com/samber/lo"
	"github.com/shandysiswandi/storefront/internal/payment/entity"
	"github.com/shandysiswandi/storefront/internal/payment/usecase"
	"github.com/shandysiswandi/storefront/internal/pkg/router"
)

const (
	signatureHeader = "Payment-Signature"
	maxWebhookBody  = 64 << 10
)

type HTTPEndpoint struct {
	uc uc
}

// CheckoutPage backs the checkout page: the step-up gate has already redirected
// browsers without a stepped-up session.
func (h *HTTPEndpoint) CheckoutPage(r *router.Request) (any, error) {
	checkouts, err := h.uc.ListCheckouts(r.Context())
	if err != nil {
		return nil, err
	}

	return CheckoutPageResponse(lo.Map(checkouts, func(c entity.Checkout, _ int) CheckoutResponse {
		return toCheckoutResponse(c)
	})), nil
}

func (h *HTTPEndpoint) CreateCheckout(r *router.Request) (any, error) {
	var req CreateCheckoutRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.CreateCheckout(r.Context(), usecase.CreateCheckoutInput{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}

	return CreateCheckoutResponse{
		CheckoutResponse: toCheckoutResponse(resp.Checkout),
		RedirectURL:      resp.RedirectURL,
	}, nil
}

// Webhook needs the body byte for byte: the signature covers the raw payload.
func (h *HTTPEndpoint) Webhook(r *router.Request) (any, error) {
	body, err := r.RawBody(maxWebhookBody)
	if err != nil {
		return nil, err
	}

	err = h.uc.Webhook(r.Context(), usecase.WebhookInput{
		Signature: r.Header.Get(signatureHeader),
		Payload:   body,
	})
	if err != nil {
		return nil, err
	}

	return WebhookResponse{Received: true}, nil
}
