package quota

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/postmint-ai/postmint/internal/api"
	"github.com/postmint-ai/postmint/internal/auth"
)

// Handler provides the balance-display endpoint. It does no arithmetic of
// its own; everything comes from StatusFor.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// GetStatus handles GET /api/v1/quota.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	q, err := h.store.GetOrCreate(r.Context(), userID)
	if err != nil {
		slog.Error("loading quota status", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, StatusFor(q, time.Now()))
}
