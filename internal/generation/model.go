package generation

import (
	"github.com/postmint-ai/postmint/internal/quota"
)

// SubmitRequest is the body of POST /api/v1/posts/generate. The description
// is validated by the quota policy (its limits produce the specific error
// kinds); tone and audience are checked against the generator's supported
// values by custom validators registered in NewHandler.
type SubmitRequest struct {
	Description string `json:"description"`
	Tone        string `json:"tone" validate:"required,tone"`
	Audience    string `json:"audience" validate:"required,audience"`
	Count       int    `json:"count" validate:"required,min=1,max=35"`
}

// SubmitResult is what a successful submission returns to the caller: the
// revealed posts plus the balances as committed.
type SubmitResult struct {
	Posts     []string      `json:"posts"`
	FromCache bool          `json:"from_cache"`
	Quota     *quota.Status `json:"quota"`
}
