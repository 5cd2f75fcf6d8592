package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/storefront/internal/payment/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
	"github.com/shandysiswandi/storefront/internal/pkg/valueobject"
	"github.com/shopspring/decimal"
)

type CreateCheckoutInput struct {
	Amount      string `validate:"required,money"`
	Currency    string `validate:"required,iso4217"`
	Description string `validate:"max=255"`
}

type CreateCheckoutOutput struct {
	Checkout    entity.Checkout
	RedirectURL string
}

func (s *Usecase) steppedUp(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}
	if !clm.StepUp {
		return nil, goerror.NewBusiness("step-up verification required", goerror.CodeForbidden)
	}
	return clm, nil
}

// CreateCheckout opens a pending checkout for the stepped-up session and returns
// the processor URL the browser continues on.
func (s *Usecase) CreateCheckout(ctx context.Context, in CreateCheckoutInput) (*CreateCheckoutOutput, error) {
	ctx, span := s.startSpan(ctx, "CreateCheckout")
	defer span.End()

	clm, err := s.steppedUp(ctx)
	if err != nil {
		return nil, err
	}

	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	in.Amount = strings.TrimSpace(in.Amount)
	in.Description = strings.TrimSpace(in.Description)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	amount, err := decimal.NewFromString(in.Amount)
	if err != nil {
		return nil, goerror.NewInvalidInput(nil, "amount", "amount must be a decimal number")
	}

	now := s.clock.Now()
	checkout := entity.Checkout{
		ID:          s.uid.Generate(),
		Reference:   s.reference.Generate(),
		UserID:      clm.UserID,
		Amount:      amount,
		Currency:    in.Currency,
		Description: in.Description,
		Status:      entity.CheckoutStatusPending,
		Metadata: valueobject.JSONMap{
			"identity":       clm.UserEmail,
			"correlation_id": instrument.GetCorrelationID(ctx),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repoDB.CreateCheckout(ctx, checkout); err != nil {
		slog.ErrorContext(ctx, "failed to repo create checkout", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "checkout created", "reference", checkout.Reference, "amount", amount.StringFixed(2), "currency", checkout.Currency)

	return &CreateCheckoutOutput{
		Checkout:    checkout,
		RedirectURL: s.redirectURL + checkout.Reference,
	}, nil
}

// ListCheckouts returns the most recent checkouts of the stepped-up session user.
func (s *Usecase) ListCheckouts(ctx context.Context) ([]entity.Checkout, error) {
	ctx, span := s.startSpan(ctx, "ListCheckouts")
	defer span.End()

	clm, err := s.steppedUp(ctx)
	if err != nil {
		return nil, err
	}

	checkouts, err := s.repoDB.ListCheckoutsByUser(ctx, clm.UserID, s.recentLimit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list checkouts", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return checkouts, nil
}
