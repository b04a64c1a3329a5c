package httpx

import (
	"errors"
	"net/http"

	"github.com/keystone-auth/keystone/internal/shared"
)

// FieldErrors maps a field name to all of its validation messages.
// Every failing field is reported; the API never truncates to the
// first failure.
type FieldErrors map[string][]string

// Add appends a message for a field.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// HasErrors reports whether any field failed.
func (fe FieldErrors) HasErrors() bool {
	return len(fe) > 0
}

// RespondFieldErrors writes the per-field error mapping as a 400 body.
func RespondFieldErrors(w http.ResponseWriter, fe FieldErrors) {
	JSON(w, http.StatusBadRequest, fe)
}

// RespondError maps domain errors to HTTP responses. Authentication
// failures share one message so callers cannot tell a missing account
// from a wrong password, or an expired token from a revoked one.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials):
		Error(w, http.StatusUnauthorized, "No active account found with the given credentials.")
	case errors.Is(err, shared.ErrTokenExpired),
		errors.Is(err, shared.ErrTokenInvalid),
		errors.Is(err, shared.ErrTokenBlacklisted):
		Error(w, http.StatusUnauthorized, "Token is invalid or expired.")
	case errors.Is(err, shared.ErrNotFound):
		Error(w, http.StatusNotFound, "Resource not found.")
	case errors.Is(err, shared.ErrDuplicate):
		Error(w, http.StatusBadRequest, "Duplicate entry.")
	default:
		Error(w, http.StatusInternalServerError, "Internal server error.")
	}
}
