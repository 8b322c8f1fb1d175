// Package payments builds hosted checkout links for addon purchases. The
// store hosts the payment page; we embed the user id and addon type as
// custom fields so the completed-order webhook can route the credit.
package payments

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/postmint-ai/postmint/internal/purchases"
)

// Client builds checkout URLs against a LemonSqueezy-style store.
type Client struct {
	storeURL         string
	postsVariantID   string
	submitsVariantID string
}

type Config struct {
	StoreURL         string
	PostsVariantID   string
	SubmitsVariantID string
}

func NewClient(cfg Config) *Client {
	return &Client{
		storeURL:         cfg.StoreURL,
		postsVariantID:   cfg.PostsVariantID,
		submitsVariantID: cfg.SubmitsVariantID,
	}
}

// CheckoutURL returns the hosted payment page for one addon purchase.
func (c *Client) CheckoutURL(userID uuid.UUID, addon purchases.AddonType) (string, error) {
	var variant string
	switch addon {
	case purchases.AddonPosts:
		variant = c.postsVariantID
	case purchases.AddonSubmits:
		variant = c.submitsVariantID
	default:
		return "", fmt.Errorf("unknown addon type %q", addon)
	}

	q := url.Values{}
	q.Set("checkout[custom][user_id]", userID.String())
	q.Set("checkout[custom][addon_type]", string(addon))
	return fmt.Sprintf("%s/checkout/buy/%s?%s", c.storeURL, variant, q.Encode()), nil
}
