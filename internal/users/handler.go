package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/keystone-auth/keystone/internal/platform/httpx"
	"github.com/keystone-auth/keystone/internal/shared"
)

// Handler wires HTTP endpoints for account registration and profiles.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

type registerResponse struct {
	Message string  `json:"message"`
	User    Profile `json:"user"`
}

// Register handles POST /api/auth/register/.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, fieldErrs, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.logger.Error("registration failed", slog.String("username", req.Username), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if fieldErrs.HasErrors() {
		httpx.RespondFieldErrors(w, fieldErrs)
		return
	}

	h.logger.Info("user registered successfully", slog.String("username", user.Username))
	httpx.JSON(w, http.StatusCreated, registerResponse{
		Message: "User registered successfully.",
		User:    NewProfile(user),
	})
}

// Profile handles GET /api/auth/profile/. The auth middleware has
// already established the account identity.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	user, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Token outlived the account it was minted for.
			httpx.Error(w, http.StatusUnauthorized, "Token is invalid or expired.")
			return
		}
		h.logger.Error("profile retrieval failed", slog.Int64("user_id", userID), slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to retrieve profile.")
		return
	}

	h.logger.Info("profile retrieved", slog.String("username", user.Username))
	httpx.JSON(w, http.StatusOK, NewProfile(user))
}
