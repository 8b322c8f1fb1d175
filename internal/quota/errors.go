package quota

import "errors"

// Sentinel errors for every quota decision. Handlers map these to HTTP
// status codes; the policy functions never return anything else.
var (
	ErrDescriptionEmpty     = errors.New("business description is empty")
	ErrDescriptionTooLong   = errors.New("business description exceeds 600 characters")
	ErrNoSubmitsRemaining   = errors.New("no submissions remaining")
	ErrInsufficientPosts    = errors.New("not enough post credit remaining")
	ErrDailyAPILimitReached = errors.New("daily generation limit reached, try again tomorrow")
	ErrMaxAddonReached      = errors.New("maximum purchased post credit reached")
)
