package quota

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDescription(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want error
	}{
		{"valid", "A coffee roastery in Lisbon", nil},
		{"empty", "", ErrDescriptionEmpty},
		{"whitespace only", "   \n\t ", ErrDescriptionEmpty},
		{"at limit", strings.Repeat("x", MaxDescriptionLen), nil},
		{"over limit", strings.Repeat("x", MaxDescriptionLen+1), ErrDescriptionTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateDescription(tt.desc), tt.want)
		})
	}
}

func TestCanSubmit(t *testing.T) {
	assert.NoError(t, CanSubmit(&UserQuota{RemainingSubmits: 1}))
	assert.NoError(t, CanSubmit(&UserQuota{PurchasedSubmits: 2}))
	assert.ErrorIs(t, CanSubmit(&UserQuota{}), ErrNoSubmitsRemaining)
}

func TestCanReveal(t *testing.T) {
	q := &UserQuota{RemainingPosts: 3, PurchasedPosts: 2}
	assert.NoError(t, CanReveal(q, 5))
	assert.ErrorIs(t, CanReveal(q, 6), ErrInsufficientPosts)
}

func TestDeductPosts_PurchasedFirst(t *testing.T) {
	tests := []struct {
		name                    string
		purchased, free, n      int
		wantPurchased, wantFree int
	}{
		{"all from purchased", 10, 5, 7, 3, 5},
		{"split across both", 3, 5, 7, 0, 1},
		{"all from free", 0, 5, 4, 0, 1},
		{"exact drain", 3, 2, 5, 0, 0},
		{"zero reveal", 3, 2, 0, 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &UserQuota{PurchasedPosts: tt.purchased, RemainingPosts: tt.free}
			require.NoError(t, CanReveal(q, tt.n))

			gotPurchased, gotFree := DeductPosts(q, tt.n)
			assert.Equal(t, tt.wantPurchased, gotPurchased)
			assert.Equal(t, tt.wantFree, gotFree)
		})
	}
}

func TestDeductPosts_Property(t *testing.T) {
	// For any ledger and any n <= p+r: purchased' = p - min(n,p),
	// free' = r - max(0, n-p), and neither goes negative.
	for p := 0; p <= 12; p++ {
		for r := 0; r <= 12; r++ {
			for n := 0; n <= p+r; n++ {
				q := &UserQuota{PurchasedPosts: p, RemainingPosts: r}
				gotP, gotR := DeductPosts(q, n)

				wantP := p - min(n, p)
				wantR := r - max(0, n-p)
				require.Equal(t, wantP, gotP, "p=%d r=%d n=%d", p, r, n)
				require.Equal(t, wantR, gotR, "p=%d r=%d n=%d", p, r, n)
				require.GreaterOrEqual(t, gotP, 0)
				require.GreaterOrEqual(t, gotR, 0)
			}
		}
	}
}

func TestDeductSubmit_PurchasedFirst(t *testing.T) {
	q := &UserQuota{RemainingSubmits: 1, PurchasedSubmits: 2}
	purchased, free := DeductSubmit(q)
	assert.Equal(t, 1, purchased)
	assert.Equal(t, 1, free)

	q = &UserQuota{RemainingSubmits: 1}
	purchased, free = DeductSubmit(q)
	assert.Equal(t, 0, purchased)
	assert.Equal(t, 0, free)
}

func TestCanGenerate_DailyReset(t *testing.T) {
	today := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	// Counter from yesterday behaves as zero.
	q := &UserQuota{APICallsToday: 77, LastAPICallDate: yesterday}
	assert.Equal(t, 0, EffectiveAPICalls(q, today))
	assert.NoError(t, CanGenerate(q, today))

	// Counter from today is live.
	q = &UserQuota{APICallsToday: DailyAPILimit, LastAPICallDate: today}
	assert.ErrorIs(t, CanGenerate(q, today), ErrDailyAPILimitReached)

	q.APICallsToday = DailyAPILimit - 1
	assert.NoError(t, CanGenerate(q, today))
}

func TestCanGenerate_DayBoundaryIgnoresClockTime(t *testing.T) {
	morning := time.Date(2025, 6, 10, 0, 0, 1, 0, time.UTC)
	night := time.Date(2025, 6, 10, 23, 59, 59, 0, time.UTC)

	q := &UserQuota{APICallsToday: DailyAPILimit, LastAPICallDate: morning}
	assert.ErrorIs(t, CanGenerate(q, night), ErrDailyAPILimitReached)
}

func TestCanPurchasePostsAddon_Cap(t *testing.T) {
	assert.NoError(t, CanPurchasePostsAddon(&UserQuota{PurchasedPosts: 0}))
	assert.NoError(t, CanPurchasePostsAddon(&UserQuota{PurchasedPosts: 20}))
	assert.ErrorIs(t, CanPurchasePostsAddon(&UserQuota{PurchasedPosts: 21}), ErrMaxAddonReached)
	assert.ErrorIs(t, CanPurchasePostsAddon(&UserQuota{PurchasedPosts: MaxPurchasedPosts}), ErrMaxAddonReached)
}

func TestStatusFor(t *testing.T) {
	today := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	q := &UserQuota{
		RemainingPosts:   5,
		RemainingSubmits: 1,
		PurchasedPosts:   10,
		CachedPosts:      []string{"a", "b", "c"},
		APICallsToday:    40,
		LastAPICallDate:  today.AddDate(0, 0, -3),
	}

	st := StatusFor(q, today)
	assert.Equal(t, 5, st.RemainingPosts)
	assert.Equal(t, 10, st.PurchasedPosts)
	assert.Equal(t, 3, st.CachedPostCount)
	assert.Equal(t, 0, st.APICallsToday, "stale counter must display as zero")
	assert.Equal(t, DailyAPILimit, st.APICallsLimit)
}
