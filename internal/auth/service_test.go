package auth_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/keystone-auth/keystone/internal/auth"
	"github.com/keystone-auth/keystone/internal/shared"
	"github.com/keystone-auth/keystone/internal/users"
	_ "github.com/keystone-auth/keystone/testing"
)

type stubDirectory struct {
	user        *users.User
	lastLoginID int64
}

func (s *stubDirectory) FindByUsername(ctx context.Context, username string) (*users.User, error) {
	if s.user == nil || s.user.Username != username {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubDirectory) TouchLastLogin(ctx context.Context, id int64) error {
	s.lastLoginID = id
	return nil
}

func activeUser(t *testing.T, password string) *users.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &users.User{
		ID:           1,
		Username:     "newuser",
		Email:        "newuser@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}
}

func newAuthService(t *testing.T, dir auth.UserDirectory) *auth.Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tokens := auth.NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)
	return auth.NewService(slog.Default(), dir, tokens, auth.NewBlacklist(client))
}

func TestLoginIssuesVerifiablePair(t *testing.T) {
	dir := &stubDirectory{user: activeUser(t, "correctpass")}
	svc := newAuthService(t, dir)

	pair, err := svc.Login(context.Background(), "  NewUser ", "correctpass")
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	userID, err := svc.VerifyAccess(context.Background(), pair.Access)
	require.NoError(t, err)
	assert.Equal(t, int64(1), userID)
	assert.Equal(t, int64(1), dir.lastLoginID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	inactive := activeUser(t, "correctpass")
	inactive.IsActive = false

	tests := []struct {
		name     string
		dir      *stubDirectory
		username string
		password string
	}{
		{"unknown user", &stubDirectory{}, "ghost", "correctpass"},
		{"wrong password", &stubDirectory{user: activeUser(t, "correctpass")}, "newuser", "wrongpass"},
		{"inactive account", &stubDirectory{user: inactive}, "newuser", "correctpass"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newAuthService(t, tc.dir)
			_, err := svc.Login(context.Background(), tc.username, tc.password)
			assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
		})
	}
}

func TestRefreshMintsNewAccessToken(t *testing.T) {
	svc := newAuthService(t, &stubDirectory{user: activeUser(t, "correctpass")})

	pair, err := svc.Login(context.Background(), "newuser", "correctpass")
	require.NoError(t, err)

	access, err := svc.Refresh(context.Background(), pair.Refresh)
	require.NoError(t, err)

	userID, err := svc.VerifyAccess(context.Background(), access)
	require.NoError(t, err)
	assert.Equal(t, int64(1), userID)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc := newAuthService(t, &stubDirectory{user: activeUser(t, "correctpass")})

	pair, err := svc.Login(context.Background(), "newuser", "correctpass")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.Access)
	assert.ErrorIs(t, err, shared.ErrTokenInvalid)
}

func TestLogoutBlacklistsRefreshToken(t *testing.T) {
	svc := newAuthService(t, &stubDirectory{user: activeUser(t, "correctpass")})

	pair, err := svc.Login(context.Background(), "newuser", "correctpass")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), pair.Refresh))

	_, err = svc.Refresh(context.Background(), pair.Refresh)
	assert.ErrorIs(t, err, shared.ErrTokenBlacklisted)
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc := newAuthService(t, &stubDirectory{user: activeUser(t, "correctpass")})

	pair, err := svc.Login(context.Background(), "newuser", "correctpass")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), pair.Refresh))
	// Retried logout with the same token is a no-op success.
	require.NoError(t, svc.Logout(context.Background(), pair.Refresh))
}

func TestLogoutRejectsMalformedToken(t *testing.T) {
	svc := newAuthService(t, &stubDirectory{})

	err := svc.Logout(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, shared.ErrTokenInvalid)
}
