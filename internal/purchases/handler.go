package purchases

import (
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/postmint-ai/postmint/internal/api"
	"github.com/postmint-ai/postmint/internal/auth"
)

// Handler serves the authenticated purchase history endpoint.
type Handler struct {
	pool *pgxpool.Pool
	repo *Repository
}

func NewHandler(pool *pgxpool.Pool, repo *Repository) *Handler {
	return &Handler{pool: pool, repo: repo}
}

// List handles GET /api/v1/purchases.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	list, err := h.repo.ListByUser(r.Context(), h.pool, userID)
	if err != nil {
		slog.Error("failed to list purchases", "user_id", userID, "error", err)
		api.HandleError(w, err)
		return
	}
	if list == nil {
		list = []*Purchase{}
	}
	api.JSON(w, http.StatusOK, list)
}
