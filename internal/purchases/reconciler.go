package purchases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/postmint-ai/postmint/internal/metrics"
	"github.com/postmint-ai/postmint/internal/quota"
)

// Tx is the locked purchase+ledger state one reconciliation works against.
// The production implementation holds a database transaction; tests supply
// an in-memory one.
type Tx interface {
	PurchaseByOrderID(ctx context.Context, orderID int64) (*Purchase, error)
	QuotaForUpdate(ctx context.Context, userID uuid.UUID) (*quota.UserQuota, error)
	ApplyQuota(ctx context.Context, userID uuid.UUID, upd *quota.Update) error
	InsertPurchase(ctx context.Context, p *Purchase) error
}

// Store runs fn inside one transaction; fn's writes commit together or not
// at all.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Reconciler applies one verified payment event to the ledger. The credit
// increment and the audit record commit in a single transaction under the
// user's row lock, and the unique order id makes webhook redelivery a no-op.
type Reconciler struct {
	store Store
}

func NewReconciler(pool *pgxpool.Pool, repo *Repository, quotas *quota.Store) *Reconciler {
	return &Reconciler{store: &pgStore{pool: pool, purchases: repo, quotas: quotas}}
}

// Reconcile processes ev idempotently. A replayed completed order returns
// the original record with no second increment; a replayed rejected order
// surfaces the original rejection. A cap breach records the purchase as
// rejected and returns quota.ErrMaxAddonReached — money has changed hands,
// so the record and the log line are the operator's follow-up trail.
func (r *Reconciler) Reconcile(ctx context.Context, ev Event) (*Purchase, error) {
	if !ev.AddonType.Valid() {
		return nil, fmt.Errorf("unknown addon type %q", ev.AddonType)
	}

	var (
		result   *Purchase
		capErr   error
		replayed bool
	)
	err := r.store.WithTx(ctx, func(tx Tx) error {
		existing, err := tx.PurchaseByOrderID(ctx, ev.OrderID)
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			replayed = true
			if existing.Status == StatusRejected {
				capErr = quota.ErrMaxAddonReached
			}
			return nil
		}

		q, err := tx.QuotaForUpdate(ctx, ev.UserID)
		if err != nil {
			return err
		}

		upd, status, decideErr := decideCredit(q, ev.AddonType)
		if upd != nil {
			if err := tx.ApplyQuota(ctx, ev.UserID, upd); err != nil {
				return err
			}
		}
		capErr = decideErr

		result = &Purchase{
			ID:          uuid.New(),
			UserID:      ev.UserID,
			OrderID:     ev.OrderID,
			ProductID:   ev.ProductID,
			VariantID:   ev.VariantID,
			AddonType:   ev.AddonType,
			AmountCents: ev.AmountCents,
			Currency:    "USD",
			Status:      status,
		}
		return tx.InsertPurchase(ctx, result)
	})
	if err != nil {
		return nil, err
	}

	if replayed {
		slog.Info("purchase replay ignored", "order_id", ev.OrderID, "status", result.Status)
		return result, capErr
	}

	metrics.PurchasesTotal.WithLabelValues(string(ev.AddonType), string(result.Status)).Inc()

	if capErr != nil {
		slog.Warn("purchase rejected at addon cap, manual refund required",
			"order_id", ev.OrderID,
			"user_id", ev.UserID,
		)
		return result, capErr
	}

	slog.Info("purchase credited",
		"order_id", ev.OrderID,
		"user_id", ev.UserID,
		"addon_type", ev.AddonType,
	)
	return result, nil
}

// decideCredit is the pure credit rule: which ledger fields an addon may
// change and whether the cap rejects it. A submits addon grants submission
// credit only; post credit comes solely from a posts addon.
func decideCredit(q *quota.UserQuota, addon AddonType) (*quota.Update, Status, error) {
	switch addon {
	case AddonPosts:
		if err := quota.CanPurchasePostsAddon(q); err != nil {
			return nil, StatusRejected, err
		}
		posts := q.PurchasedPosts + quota.AddonPostCredits
		return &quota.Update{PurchasedPosts: &posts}, StatusCompleted, nil
	case AddonSubmits:
		submits := q.PurchasedSubmits + quota.AddonSubmitCredits
		return &quota.Update{PurchasedSubmits: &submits}, StatusCompleted, nil
	default:
		return nil, StatusRejected, fmt.Errorf("unknown addon type %q", addon)
	}
}

// pgStore backs the reconciler with PostgreSQL.
type pgStore struct {
	pool      *pgxpool.Pool
	purchases *Repository
	quotas    *quota.Store
}

func (s *pgStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning purchase transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx, purchases: s.purchases, quotas: s.quotas}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing purchase transaction: %w", err)
	}
	return nil
}

type pgTx struct {
	tx        pgx.Tx
	purchases *Repository
	quotas    *quota.Store
}

func (t *pgTx) PurchaseByOrderID(ctx context.Context, orderID int64) (*Purchase, error) {
	return t.purchases.GetByOrderID(ctx, t.tx, orderID)
}

func (t *pgTx) QuotaForUpdate(ctx context.Context, userID uuid.UUID) (*quota.UserQuota, error) {
	return t.quotas.ForUpdate(ctx, t.tx, userID)
}

func (t *pgTx) ApplyQuota(ctx context.Context, userID uuid.UUID, upd *quota.Update) error {
	return t.quotas.Apply(ctx, t.tx, userID, upd)
}

func (t *pgTx) InsertPurchase(ctx context.Context, p *Purchase) error {
	return t.purchases.Insert(ctx, t.tx, p)
}
