package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/storefront/internal/payment/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/pgstore"
)

const checkoutColumns = `id, reference, user_id, amount, currency, description, status, metadata, created_at, updated_at`

func (s *DB) CreateCheckout(ctx context.Context, c entity.Checkout) (err error) {
	ctx, span := s.Start(ctx, "CreateCheckout")
	defer func() { pgstore.End(span, err) }()

	_, err = s.Conn.Exec(ctx,
		`INSERT INTO payment_checkouts (`+checkoutColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.Reference, c.UserID, c.Amount, c.Currency, c.Description, c.Status, c.Metadata, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert checkout: %w", err)
	}

	return nil
}

func (s *DB) ListCheckoutsByUser(ctx context.Context, userID int64, limit int) (_ []entity.Checkout, err error) {
	ctx, span := s.Start(ctx, "ListCheckoutsByUser")
	defer func() { pgstore.End(span, err) }()

	rows, err := s.Conn.Query(ctx,
		`SELECT `+checkoutColumns+` FROM payment_checkouts
		 WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query checkouts: %w", err)
	}

	checkouts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Checkout, error) {
		var c entity.Checkout
		err := row.Scan(&c.ID, &c.Reference, &c.UserID, &c.Amount, &c.Currency, &c.Description,
			&c.Status, &c.Metadata, &c.CreatedAt, &c.UpdatedAt)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan checkouts: %w", err)
	}

	return checkouts, nil
}

// SettleCheckout only moves pending rows so a late or replayed event cannot flip
// a settled checkout.
func (s *DB) SettleCheckout(ctx context.Context, reference string, status entity.CheckoutStatus) (_ bool, err error) {
	ctx, span := s.Start(ctx, "SettleCheckout")
	defer func() { pgstore.End(span, err) }()

	tag, err := s.Conn.Exec(ctx,
		`UPDATE payment_checkouts SET status = $2, updated_at = now()
		 WHERE reference = $1 AND status = $3`,
		reference, status, entity.CheckoutStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("update checkout: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	err = s.Conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM payment_checkouts WHERE reference = $1)`, reference,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check checkout: %w", pgstore.MapError(err))
	}
	if !exists {
		err = pgstore.MapError(pgx.ErrNoRows)
		return false, err
	}

	return false, nil
}
