package entity

import (
	"time"

	"github.com/shandysiswandi/storefront/internal/pkg/valueobject"
	"github.com/shopspring/decimal"
)

type CheckoutStatus string

const (
	CheckoutStatusPending CheckoutStatus = "pending"
	CheckoutStatusPaid    CheckoutStatus = "paid"
	CheckoutStatusFailed  CheckoutStatus = "failed"
)

func (s CheckoutStatus) String() string {
	return string(s)
}

// Final reports whether the processor already settled the checkout.
func (s CheckoutStatus) Final() bool {
	return s == CheckoutStatusPaid || s == CheckoutStatusFailed
}

type Checkout struct {
	ID          int64
	Reference   string
	UserID      int64
	Amount      decimal.Decimal
	Currency    string
	Description string
	Status      CheckoutStatus
	Metadata    valueobject.JSONMap
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
