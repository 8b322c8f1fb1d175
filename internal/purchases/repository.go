package purchases

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles purchases PostgreSQL operations. All methods run inside
// the caller's transaction so a purchase record and its ledger credit commit
// or roll back together.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

const purchaseColumns = `id, user_id, order_id, product_id, variant_id, addon_type,
	        amount_cents, currency, status, created_at`

// GetByOrderID returns the purchase for an external order id, locked for the
// remainder of tx, or nil when the order has not been seen.
func (r *Repository) GetByOrderID(ctx context.Context, tx pgx.Tx, orderID int64) (*Purchase, error) {
	var p Purchase
	err := tx.QueryRow(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE order_id = $1 FOR UPDATE`, orderID,
	).Scan(&p.ID, &p.UserID, &p.OrderID, &p.ProductID, &p.VariantID, &p.AddonType,
		&p.AmountCents, &p.Currency, &p.Status, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying purchase by order id: %w", err)
	}
	return &p, nil
}

// Insert appends the audit record. The unique order_id index makes a
// concurrent duplicate fail the transaction rather than double-credit.
func (r *Repository) Insert(ctx context.Context, tx pgx.Tx, p *Purchase) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO purchases (id, user_id, order_id, product_id, variant_id,
		                        addon_type, amount_cents, currency, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.UserID, p.OrderID, p.ProductID, p.VariantID,
		p.AddonType, p.AmountCents, p.Currency, p.Status)
	if err != nil {
		return fmt.Errorf("inserting purchase: %w", err)
	}
	return nil
}

// ListByUser returns a user's purchase history, newest first.
func (r *Repository) ListByUser(ctx context.Context, pool *pgxpool.Pool, userID uuid.UUID) ([]*Purchase, error) {
	rows, err := pool.Query(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing purchases: %w", err)
	}
	defer rows.Close()

	var out []*Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.UserID, &p.OrderID, &p.ProductID, &p.VariantID,
			&p.AddonType, &p.AmountCents, &p.Currency, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning purchase: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
