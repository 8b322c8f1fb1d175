package quota

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store handles user_quotas PostgreSQL operations. Every mutation goes
// through Apply inside a transaction holding the user's row lock, so two
// concurrent requests for the same user can never interleave a
// read-modify-write.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new quota Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const quotaColumns = `user_id, remaining_posts, remaining_submits, purchased_posts,
	        purchased_submits, cached_posts, api_calls_today, last_api_call_date, updated_at`

// GetOrCreate returns the user's ledger, creating it with the signup
// allowances if it doesn't exist yet.
func (s *Store) GetOrCreate(ctx context.Context, userID uuid.UUID) (*UserQuota, error) {
	if err := s.ensure(ctx, s.pool, userID); err != nil {
		return nil, err
	}
	return s.get(ctx, s.pool, userID, "")
}

// ForUpdate ensures the ledger row exists and returns it with the row lock
// held for the remainder of tx.
func (s *Store) ForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*UserQuota, error) {
	if err := s.ensure(ctx, tx, userID); err != nil {
		return nil, err
	}
	return s.get(ctx, tx, userID, " FOR UPDATE")
}

// Apply writes the non-nil fields of upd within tx. The caller must hold the
// row lock via ForUpdate.
func (s *Store) Apply(ctx context.Context, tx pgx.Tx, userID uuid.UUID, upd *Update) error {
	sets := []string{"updated_at = NOW()"}
	args := []any{userID}

	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if upd.RemainingPosts != nil {
		add("remaining_posts", *upd.RemainingPosts)
	}
	if upd.RemainingSubmits != nil {
		add("remaining_submits", *upd.RemainingSubmits)
	}
	if upd.PurchasedPosts != nil {
		add("purchased_posts", *upd.PurchasedPosts)
	}
	if upd.PurchasedSubmits != nil {
		add("purchased_submits", *upd.PurchasedSubmits)
	}
	if upd.CachedPosts != nil {
		data, err := json.Marshal(*upd.CachedPosts)
		if err != nil {
			return fmt.Errorf("marshaling cached posts: %w", err)
		}
		add("cached_posts", data)
	}
	if upd.APICallsToday != nil {
		add("api_calls_today", *upd.APICallsToday)
	}
	if upd.LastAPICallDate != nil {
		add("last_api_call_date", *upd.LastAPICallDate)
	}

	query := "UPDATE user_quotas SET " + strings.Join(sets, ", ") + " WHERE user_id = $1"
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("updating user quota: %w", err)
	}
	return nil
}

// UpdateFn inspects the locked ledger and returns the mutation to commit.
// Returning an error aborts the transaction with the ledger untouched.
type UpdateFn func(q *UserQuota) (*Update, error)

// Update runs fn against the user's row-locked ledger and commits the
// returned mutation as one atomic write. It returns the ledger as it stands
// after the commit.
func (s *Store) Update(ctx context.Context, userID uuid.UUID, fn UpdateFn) (*UserQuota, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning quota transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	q, err := s.ForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	upd, err := fn(q)
	if err != nil {
		return nil, err
	}

	if err := s.Apply(ctx, tx, userID, upd); err != nil {
		return nil, err
	}

	updated, err := s.get(ctx, tx, userID, "")
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing quota transaction: %w", err)
	}
	return updated, nil
}

// querier is the subset of pgxpool.Pool and pgx.Tx the store reads through.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *Store) ensure(ctx context.Context, db querier, userID uuid.UUID) error {
	_, err := db.Exec(ctx,
		`INSERT INTO user_quotas (user_id, remaining_posts, remaining_submits)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, SignupPosts, SignupSubmits)
	if err != nil {
		return fmt.Errorf("ensuring user quota: %w", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, db querier, userID uuid.UUID, suffix string) (*UserQuota, error) {
	var q UserQuota
	var cached []byte
	err := db.QueryRow(ctx,
		`SELECT `+quotaColumns+` FROM user_quotas WHERE user_id = $1`+suffix, userID,
	).Scan(&q.UserID, &q.RemainingPosts, &q.RemainingSubmits, &q.PurchasedPosts,
		&q.PurchasedSubmits, &cached, &q.APICallsToday, &q.LastAPICallDate, &q.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("fetching user quota: %w", err)
	}
	if err := json.Unmarshal(cached, &q.CachedPosts); err != nil {
		return nil, fmt.Errorf("unmarshaling cached posts: %w", err)
	}
	return &q, nil
}
