package quota

import (
	"time"

	"github.com/google/uuid"
)

// UserQuota matches the user_quotas table schema. It is the per-user ledger:
// free monthly balances, purchased addon credit, the pool of generated but
// not yet revealed posts, and the daily external-API call counter.
type UserQuota struct {
	UserID           uuid.UUID `json:"user_id"`
	RemainingPosts   int       `json:"remaining_posts"`
	RemainingSubmits int       `json:"remaining_submits"`
	PurchasedPosts   int       `json:"purchased_posts"`
	PurchasedSubmits int       `json:"purchased_submits"`
	CachedPosts      []string  `json:"cached_posts"`
	APICallsToday    int       `json:"api_calls_today"`
	LastAPICallDate  time.Time `json:"last_api_call_date"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Update enumerates exactly the ledger fields a single operation may change.
// Nil fields are left untouched by the store, so an operation can never
// clobber a column it has no business writing.
type Update struct {
	RemainingPosts   *int
	RemainingSubmits *int
	PurchasedPosts   *int
	PurchasedSubmits *int
	CachedPosts      *[]string
	APICallsToday    *int
	LastAPICallDate  *time.Time
}

// Apply copies the non-nil fields of u onto q. The store mirrors this when
// building the UPDATE statement; tests use it to model in-memory ledgers.
func (u *Update) Apply(q *UserQuota) {
	if u.RemainingPosts != nil {
		q.RemainingPosts = *u.RemainingPosts
	}
	if u.RemainingSubmits != nil {
		q.RemainingSubmits = *u.RemainingSubmits
	}
	if u.PurchasedPosts != nil {
		q.PurchasedPosts = *u.PurchasedPosts
	}
	if u.PurchasedSubmits != nil {
		q.PurchasedSubmits = *u.PurchasedSubmits
	}
	if u.CachedPosts != nil {
		q.CachedPosts = *u.CachedPosts
	}
	if u.APICallsToday != nil {
		q.APICallsToday = *u.APICallsToday
	}
	if u.LastAPICallDate != nil {
		q.LastAPICallDate = *u.LastAPICallDate
	}
}

// Status is the API response showing current balances and usage.
type Status struct {
	RemainingPosts   int `json:"remaining_posts"`
	RemainingSubmits int `json:"remaining_submits"`
	PurchasedPosts   int `json:"purchased_posts"`
	PurchasedSubmits int `json:"purchased_submits"`
	CachedPostCount  int `json:"cached_post_count"`
	APICallsToday    int `json:"api_calls_today"`
	APICallsLimit    int `json:"api_calls_limit"`
}

// StatusFor projects a ledger snapshot into the API view, applying the lazy
// daily counter reset so the display never shows yesterday's count.
func StatusFor(q *UserQuota, today time.Time) *Status {
	return &Status{
		RemainingPosts:   q.RemainingPosts,
		RemainingSubmits: q.RemainingSubmits,
		PurchasedPosts:   q.PurchasedPosts,
		PurchasedSubmits: q.PurchasedSubmits,
		CachedPostCount:  len(q.CachedPosts),
		APICallsToday:    EffectiveAPICalls(q, today),
		APICallsLimit:    DailyAPILimit,
	}
}
