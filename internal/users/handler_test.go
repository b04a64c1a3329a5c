package users_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/keystone-auth/keystone/internal/users"
	_ "github.com/keystone-auth/keystone/testing"
)

func postRegister(t *testing.T, handler *users.Handler, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.Register(res, req)
	return res
}

func TestRegisterEndpointCreatesUser(t *testing.T) {
	repo := newMemRepo()
	handler := users.NewHandler(slog.Default(), newUsersService(repo))

	res := postRegister(t, handler, map[string]string{
		"username":   "newuser",
		"email":      "newuser@example.com",
		"first_name": "New",
		"last_name":  "User",
		"password":   "SecurePass123!",
		"password2":  "SecurePass123!",
	})

	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	var body struct {
		Message string        `json:"message"`
		User    users.Profile `json:"user"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, "User registered successfully.", body.Message)
	assert.Equal(t, "newuser", body.User.Username)
	assert.Equal(t, "New User", body.User.FullName)
	assert.Nil(t, body.User.ProfilePicture)

	// The stored hash must never equal the submitted plaintext.
	stored, err := repo.FindByID(context.Background(), body.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "SecurePass123!", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("SecurePass123!")))
}

func TestRegisterEndpointDuplicateUsername(t *testing.T) {
	repo := newMemRepo()
	handler := users.NewHandler(slog.Default(), newUsersService(repo))

	first := postRegister(t, handler, map[string]string{
		"username":   "newuser",
		"email":      "newuser@example.com",
		"first_name": "New",
		"last_name":  "User",
		"password":   "SecurePass123!",
		"password2":  "SecurePass123!",
	})
	require.Equal(t, http.StatusCreated, first.Code)

	second := postRegister(t, handler, map[string]string{
		"username":   "newuser",
		"email":      "different@example.com",
		"first_name": "New",
		"last_name":  "User",
		"password":   "SecurePass123!",
		"password2":  "SecurePass123!",
	})
	require.Equal(t, http.StatusBadRequest, second.Code)

	var fieldErrs map[string][]string
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &fieldErrs))
	assert.Contains(t, fieldErrs, "username")
}

func TestRegisterEndpointInvalidBody(t *testing.T) {
	handler := users.NewHandler(slog.Default(), newUsersService(newMemRepo()))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register/", bytes.NewReader([]byte("{")))
	res := httptest.NewRecorder()
	handler.Register(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
}
