package generation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/postmint-ai/postmint/internal/api"
	"github.com/postmint-ai/postmint/internal/auth"
	"github.com/postmint-ai/postmint/internal/generator"
	"github.com/postmint-ai/postmint/internal/quota"
)

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	validate := validator.New()
	validate.RegisterValidation("tone", oneOf(generator.Tones))
	validate.RegisterValidation("audience", oneOf(generator.Audiences))
	return &Handler{
		svc:      svc,
		validate: validate,
	}
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return slices.Contains(allowed, fl.Field().String())
	}
}

// Generate handles POST /api/v1/posts/generate.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	res, err := h.svc.Submit(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, res)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, quota.ErrDescriptionEmpty),
		errors.Is(err, quota.ErrDescriptionTooLong):
		api.HandleError(w, api.NewValidationError(err.Error()))
	case errors.Is(err, quota.ErrNoSubmitsRemaining),
		errors.Is(err, quota.ErrInsufficientPosts):
		api.HandleError(w, api.NewPaymentRequiredError(err.Error()))
	case errors.Is(err, quota.ErrDailyAPILimitReached):
		api.HandleError(w, api.NewTooManyRequestsError(err.Error()))
	case errors.Is(err, generator.ErrGeneratorFailure):
		slog.Error("generator call failed", "error", err)
		api.HandleError(w, api.NewBadGatewayError(generator.ErrGeneratorFailure.Error()))
	case errors.Is(err, ErrConflict):
		api.HandleError(w, api.NewConflictError(err.Error()))
	default:
		slog.Error("submission failed", "error", err, "path", r.URL.Path)
		api.HandleError(w, api.ErrInternalServer)
	}
}
