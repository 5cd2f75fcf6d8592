package inbound

import (
	"net/http"
	"time"

	"github.com/shandysiswandi/storefront/internal/payment/entity"
)

type CreateCheckoutRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

type CheckoutResponse struct {
	Reference   string    `json:"reference"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCheckoutResponse(c entity.Checkout) CheckoutResponse {
	return CheckoutResponse{
		Reference:   c.Reference,
		Amount:      c.Amount.StringFixed(2),
		Currency:    c.Currency,
		Description: c.Description,
		Status:      c.Status.String(),
		CreatedAt:   c.CreatedAt,
	}
}

type CreateCheckoutResponse struct {
	CheckoutResponse
	RedirectURL string `json:"redirect_url"`
}

func (CreateCheckoutResponse) StatusCode() int { return http.StatusCreated }

func (CreateCheckoutResponse) Message() string {
	return "Checkout created"
}

type CheckoutPageResponse []CheckoutResponse

func (p CheckoutPageResponse) Meta() map[string]any {
	return map[string]any{"count": len(p)}
}

type WebhookResponse struct {
	Received bool `json:"received"`
}
