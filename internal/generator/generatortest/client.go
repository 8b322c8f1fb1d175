// Package generatortest provides a fake generator.Client for tests.
package generatortest

import (
	"context"
	"fmt"
	"strings"

	"github.com/postmint-ai/postmint/internal/generator"
)

// Client is a scriptable generator.Client. With no overrides it returns a
// numbered batch of generator.BatchSize posts.
type Client struct {
	// Completion, when non-empty, is returned verbatim.
	Completion string
	// Err, when set, is returned instead of a completion.
	Err error
	// Calls counts Generate invocations.
	Calls int
	// LastRequest holds the most recent request.
	LastRequest generator.Request
}

// Generate implements generator.Client.
func (c *Client) Generate(ctx context.Context, req generator.Request) (string, error) {
	c.Calls++
	c.LastRequest = req

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", generator.ErrGeneratorFailure, err)
	}
	if c.Err != nil {
		return "", c.Err
	}
	if c.Completion != "" {
		return c.Completion, nil
	}

	var sb strings.Builder
	for i := 1; i <= generator.BatchSize; i++ {
		fmt.Fprintf(&sb, "%d. Generated post %d about %s\n", i, i, req.Description)
	}
	return sb.String(), nil
}
