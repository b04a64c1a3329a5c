package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/keystone-auth/keystone/internal/auth"
	"github.com/keystone-auth/keystone/internal/platform/httpx"
	"github.com/keystone-auth/keystone/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger       *slog.Logger
	Config       *Config
	AuthHandler  *auth.Handler
	UsersHandler *users.Handler
	RequireAuth  func(http.Handler) http.Handler
}

type healthBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewRouter constructs the chi.Router with Keystone defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register/", params.UsersHandler.Register)
		r.Post("/login/", params.AuthHandler.Login)
		r.Post("/token/refresh/", params.AuthHandler.Refresh)

		r.Get("/health/", func(w http.ResponseWriter, r *http.Request) {
			httpx.JSON(w, http.StatusOK, healthBody{
				Status:  "healthy",
				Message: "User Authentication API is running.",
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(params.RequireAuth)
			r.Get("/profile/", params.UsersHandler.Profile)
			r.Post("/logout/", params.AuthHandler.Logout)
		})
	})

	return r
}
