// Package generator defines the external text generator boundary: a client
// that turns a business description into one raw completion, and a parser
// that splits the completion into discrete posts.
package generator

import (
	"context"
	"errors"
)

// BatchSize is how many posts one generator call asks for. Over-generating
// lets later reveal requests be served from the cached pool without spending
// another submission.
const BatchSize = 35

// Request describes one generation call.
type Request struct {
	Description string
	Tone        string
	Audience    string
}

// Client is implemented by the production OpenRouter client and by test
// fakes. Generate returns the raw completion text; implementations must
// honor ctx cancellation and deadlines.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ErrGeneratorFailure covers every upstream failure mode: transport errors,
// non-success responses, timeouts, and unparseable payloads. The caller's
// ledger is never mutated on this error, so resubmitting is always safe.
var ErrGeneratorFailure = errors.New("post generator unavailable")

// Supported tone and audience values, enforced by the submission request
// validators.
var (
	Tones     = []string{"professional", "casual", "enthusiastic", "humorous", "informative"}
	Audiences = []string{"general", "business", "tech", "creatives", "young"}
)
