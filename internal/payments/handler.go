package payments

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/postmint-ai/postmint/internal/api"
	"github.com/postmint-ai/postmint/internal/auth"
	"github.com/postmint-ai/postmint/internal/purchases"
	"github.com/postmint-ai/postmint/internal/quota"
)

type CheckoutRequest struct {
	AddonType string `json:"addon_type" validate:"required,oneof=posts submits"`
}

type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

// quotaStore is the slice of the quota store the handler needs.
type quotaStore interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*quota.UserQuota, error)
}

// Handler serves POST /api/v1/addons/checkout. It refuses a checkout the
// ledger already rules out, so users are not sent to a payment page for a
// purchase the webhook would reject.
type Handler struct {
	client   *Client
	quotas   quotaStore
	validate *validator.Validate
}

func NewHandler(client *Client, quotas quotaStore) *Handler {
	return &Handler{
		client:   client,
		quotas:   quotas,
		validate: validator.New(),
	}
}

func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError("addon_type must be posts or submits"))
		return
	}
	addon := purchases.AddonType(req.AddonType)

	q, err := h.quotas.GetOrCreate(r.Context(), userID)
	if err != nil {
		slog.Error("failed to load quota for checkout", "user_id", userID, "error", err)
		api.HandleError(w, err)
		return
	}

	if err := h.precheck(q, addon); err != nil {
		writeCheckoutError(w, err)
		return
	}

	checkoutURL, err := h.client.CheckoutURL(userID, addon)
	if err != nil {
		api.HandleError(w, api.NewBadRequestError(err.Error()))
		return
	}

	slog.Info("checkout created", "user_id", userID, "addon_type", addon)
	api.JSON(w, http.StatusOK, CheckoutResponse{CheckoutURL: checkoutURL})
}

// precheck mirrors the rules the reconciler enforces after payment. A posts
// addon is also pointless when the cached pool holds nothing beyond what
// current balances can already reveal.
func (h *Handler) precheck(q *quota.UserQuota, addon purchases.AddonType) error {
	switch addon {
	case purchases.AddonPosts:
		if err := quota.CanPurchasePostsAddon(q); err != nil {
			return err
		}
		if len(q.CachedPosts) <= q.RemainingPosts+q.PurchasedPosts {
			return errNoLockedPosts
		}
	case purchases.AddonSubmits:
		if err := quota.CanGenerate(q, time.Now()); err != nil {
			return err
		}
	}
	return nil
}

var errNoLockedPosts = errors.New("no cached posts beyond current balance")

func writeCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quota.ErrMaxAddonReached):
		api.HandleError(w, api.NewConflictError("maximum purchased post credit reached"))
	case errors.Is(err, errNoLockedPosts):
		api.HandleError(w, api.NewConflictError("no cached posts available to unlock"))
	case errors.Is(err, quota.ErrDailyAPILimitReached):
		api.HandleError(w, api.NewTooManyRequestsError("daily generation limit reached"))
	default:
		api.HandleError(w, err)
	}
}
