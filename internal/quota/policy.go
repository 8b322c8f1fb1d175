package quota

import (
	"strings"
	"time"
)

// Balance and limit constants. These are product rules, not tunables.
const (
	// SignupPosts and SignupSubmits are the free allowances a new ledger
	// starts with.
	SignupPosts   = 5
	SignupSubmits = 1

	// DailyAPILimit caps external generator calls per user per calendar day.
	DailyAPILimit = 100

	// MaxDescriptionLen bounds the business description sent to the generator.
	MaxDescriptionLen = 600

	// AddonPostCredits is granted per posts addon purchase; MaxPurchasedPosts
	// caps the purchased balance at three such purchases.
	AddonPostCredits  = 10
	MaxPurchasedPosts = 30

	// AddonSubmitCredits is granted per submits addon purchase.
	AddonSubmitCredits = 1
)

// The functions below are the single source of truth for every balance
// decision. They are pure: they read a ledger snapshot and return either a
// sentinel error or derived numbers, and never touch storage.

// ValidateDescription rejects blank or over-long business descriptions
// before any state is read.
func ValidateDescription(desc string) error {
	if strings.TrimSpace(desc) == "" {
		return ErrDescriptionEmpty
	}
	if len(desc) > MaxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}

// CanSubmit reports whether the user has any submission credit left,
// free or purchased.
func CanSubmit(q *UserQuota) error {
	if q.RemainingSubmits+q.PurchasedSubmits <= 0 {
		return ErrNoSubmitsRemaining
	}
	return nil
}

// EffectiveAPICalls returns the daily call count with the lazy rollover
// applied: a counter stamped with a different date counts as zero.
func EffectiveAPICalls(q *UserQuota, today time.Time) int {
	if !sameDay(q.LastAPICallDate, today) {
		return 0
	}
	return q.APICallsToday
}

// CanGenerate reports whether another external generator call is allowed
// today.
func CanGenerate(q *UserQuota, today time.Time) error {
	if EffectiveAPICalls(q, today) >= DailyAPILimit {
		return ErrDailyAPILimitReached
	}
	return nil
}

// CanReveal reports whether the user holds enough post credit, free plus
// purchased, to reveal n posts.
func CanReveal(q *UserQuota, n int) error {
	if n > q.RemainingPosts+q.PurchasedPosts {
		return ErrInsufficientPosts
	}
	return nil
}

// DeductPosts returns the post balances after revealing n posts. Purchased
// credit is drawn down first, the remainder comes from the free allowance.
// The caller must have passed CanReveal; balances never go negative.
func DeductPosts(q *UserQuota, n int) (purchased, free int) {
	fromPurchased := min(n, q.PurchasedPosts)
	return q.PurchasedPosts - fromPurchased, q.RemainingPosts - (n - fromPurchased)
}

// DeductSubmit returns the submission balances after consuming one submit,
// purchased credit first. The caller must have passed CanSubmit.
func DeductSubmit(q *UserQuota) (purchased, free int) {
	if q.PurchasedSubmits > 0 {
		return q.PurchasedSubmits - 1, q.RemainingSubmits
	}
	return 0, q.RemainingSubmits - 1
}

// CanPurchasePostsAddon enforces the purchased-posts cap: a purchase that
// would push the balance past MaxPurchasedPosts is rejected.
func CanPurchasePostsAddon(q *UserQuota) error {
	if q.PurchasedPosts+AddonPostCredits > MaxPurchasedPosts {
		return ErrMaxAddonReached
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
