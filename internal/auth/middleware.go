package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/keystone-auth/keystone/internal/platform/httpx"
	"github.com/keystone-auth/keystone/internal/shared"
)

// Middleware guards routes that require a valid bearer access token.
type Middleware struct {
	Logger  *slog.Logger
	Service *Service
}

// RequireAuth rejects requests without a valid access token and stores
// the account ID in the request context for downstream handlers.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			httpx.Error(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			httpx.Error(w, http.StatusUnauthorized, "Authorization header must be of the form: Bearer <token>.")
			return
		}

		userID, err := m.Service.VerifyAccess(r.Context(), token)
		if err != nil {
			m.Logger.Warn("access token rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
			httpx.Error(w, http.StatusUnauthorized, "Token is invalid or expired.")
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.ContextWithUserID(r.Context(), userID)))
	})
}
