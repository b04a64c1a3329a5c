package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/keystone-auth/keystone/internal/platform/httpx"
	"github.com/keystone-auth/keystone/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// Login handles POST /api/auth/login/.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	fieldErrs := make(httpx.FieldErrors)
	if req.Username == "" {
		fieldErrs.Add("username", "Username is required.")
	}
	if req.Password == "" {
		fieldErrs.Add("password", "Password is required.")
	}
	if fieldErrs.HasErrors() {
		httpx.RespondFieldErrors(w, fieldErrs)
		return
	}

	pair, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Warn("login rejected", slog.String("username", req.Username), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	h.logger.Info("user logged in", slog.String("username", req.Username))
	httpx.JSON(w, http.StatusOK, pair)
}

// Refresh handles POST /api/auth/token/refresh/.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Refresh == "" {
		fieldErrs := make(httpx.FieldErrors)
		fieldErrs.Add("refresh", "This field is required.")
		httpx.RespondFieldErrors(w, fieldErrs)
		return
	}

	access, err := h.service.Refresh(r.Context(), req.Refresh)
	if err != nil {
		h.logger.Warn("token refresh rejected", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, refreshResponse{Access: access})
}

// Logout handles POST /api/auth/logout/. The auth middleware has
// already verified the bearer access token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Refresh == "" {
		httpx.Error(w, http.StatusBadRequest, "Refresh token is required.")
		return
	}

	if err := h.service.Logout(r.Context(), req.Refresh); err != nil {
		userID, _ := shared.UserIDFromContext(r.Context())
		if errors.Is(err, shared.ErrTokenInvalid) {
			h.logger.Warn("logout rejected", slog.Int64("user_id", userID), slog.Any("error", err))
			httpx.Error(w, http.StatusBadRequest, "Invalid or expired token.")
			return
		}
		// Not a token problem; the revocation write itself failed.
		h.logger.Error("logout failed", slog.Int64("user_id", userID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	userID, _ := shared.UserIDFromContext(r.Context())
	h.logger.Info("user logged out", slog.Int64("user_id", userID))
	httpx.Message(w, http.StatusOK, "Successfully logged out.")
}
