// Package purchases reconciles verified payment events into addon credit:
// idempotent per order, capped per addon type, with an append-only audit
// trail of every outcome.
package purchases

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// AddonType identifies what a purchase grants.
type AddonType string

const (
	// AddonPosts grants 10 purchased post credits.
	AddonPosts AddonType = "posts"
	// AddonSubmits grants 1 purchased submission credit.
	AddonSubmits AddonType = "submits"
)

func (t AddonType) Valid() bool {
	return t == AddonPosts || t == AddonSubmits
}

// Status is the final disposition of a purchase.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

// Purchase is the audit record written for every processed payment event,
// completed or rejected.
type Purchase struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	OrderID     int64     `json:"order_id"`
	ProductID   int64     `json:"product_id"`
	VariantID   int64     `json:"variant_id"`
	AddonType   AddonType `json:"addon_type"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Event is one verified payment-completed notification, already
// signature-checked by the webhook handler.
type Event struct {
	UserID      uuid.UUID
	AddonType   AddonType
	OrderID     int64
	ProductID   int64
	VariantID   int64
	AmountCents int64
}

// ErrInvalidSignature rejects a webhook whose HMAC does not match; nothing
// in the payload is trusted and no mutation happens.
var ErrInvalidSignature = errors.New("invalid webhook signature")
