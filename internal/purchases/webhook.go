package purchases

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"

	"github.com/google/uuid"

	"github.com/postmint-ai/postmint/internal/api"
	"github.com/postmint-ai/postmint/internal/quota"
)

const maxWebhookBody = 64 * 1024

// reconciler lets tests substitute the transactional Reconciler.
type reconciler interface {
	Reconcile(ctx context.Context, ev Event) (*Purchase, error)
}

// WebhookHandler receives payment provider callbacks. Only order_created
// events mutate state; everything else is acknowledged and dropped.
type WebhookHandler struct {
	secret     []byte
	reconciler reconciler
}

func NewWebhookHandler(secret string, rec *Reconciler) *WebhookHandler {
	return &WebhookHandler{secret: []byte(secret), reconciler: rec}
}

type webhookPayload struct {
	Meta struct {
		EventName string `json:"event_name"`
	} `json:"meta"`
	Data struct {
		Attributes struct {
			OrderID    int64   `json:"order_id"`
			ProductID  int64   `json:"product_id"`
			VariantID  int64   `json:"variant_id"`
			TotalUSD   float64 `json:"total_usd"`
			CustomData struct {
				UserID    string `json:"user_id"`
				AddonType string `json:"addon_type"`
			} `json:"custom_data"`
		} `json:"attributes"`
	} `json:"data"`
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("failed to read request body"))
		return
	}

	if err := h.verifySignature(body, r.Header.Get("X-Signature")); err != nil {
		slog.Warn("webhook signature rejected", "remote_addr", r.RemoteAddr)
		api.HandleError(w, api.NewUnauthorizedError("invalid webhook signature"))
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		api.HandleError(w, api.NewBadRequestError("malformed webhook payload"))
		return
	}

	if payload.Meta.EventName != "order_created" {
		slog.Debug("ignoring webhook event", "event", payload.Meta.EventName)
		api.JSONMessage(w, http.StatusOK, "event ignored")
		return
	}

	attrs := payload.Data.Attributes
	userID, err := uuid.Parse(attrs.CustomData.UserID)
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("missing or invalid user_id in custom data"))
		return
	}
	addon := AddonType(attrs.CustomData.AddonType)
	if !addon.Valid() {
		api.HandleError(w, api.NewBadRequestError("missing or invalid addon_type in custom data"))
		return
	}

	ev := Event{
		UserID:      userID,
		AddonType:   addon,
		OrderID:     attrs.OrderID,
		ProductID:   attrs.ProductID,
		VariantID:   attrs.VariantID,
		AmountCents: int64(math.Round(attrs.TotalUSD * 100)),
	}

	_, err = h.reconciler.Reconcile(r.Context(), ev)
	switch {
	case err == nil:
		api.JSONMessage(w, http.StatusOK, "purchase processed")
	case errors.Is(err, quota.ErrMaxAddonReached):
		// The provider must not retry: the order is recorded, just not credited.
		api.JSONMessage(w, http.StatusOK, "purchase recorded without credit")
	default:
		slog.Error("failed to reconcile purchase", "order_id", attrs.OrderID, "error", err)
		api.HandleError(w, err)
	}
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) error {
	if signature == "" {
		return ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
