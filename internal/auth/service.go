package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/keystone-auth/keystone/internal/shared"
	"github.com/keystone-auth/keystone/internal/users"
)

// UserDirectory is the slice of the users repository the auth flows
// need.
type UserDirectory interface {
	FindByUsername(ctx context.Context, username string) (*users.User, error)
	TouchLastLogin(ctx context.Context, id int64) error
}

// Service wraps authentication business rules: credential checks,
// token issuance, refresh and revocation.
type Service struct {
	logger    *slog.Logger
	users     UserDirectory
	tokens    *TokenManager
	blacklist *Blacklist
}

// NewService constructs a new Service.
func NewService(logger *slog.Logger, directory UserDirectory, tokens *TokenManager, blacklist *Blacklist) *Service {
	return &Service{logger: logger, users: directory, tokens: tokens, blacklist: blacklist}
}

// Login validates username/password credentials and issues a token
// pair. Every failure collapses to ErrInvalidCredentials so callers
// cannot probe which usernames exist.
func (s *Service) Login(ctx context.Context, username, password string) (Pair, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return Pair{}, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return Pair{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Pair{}, shared.ErrInvalidCredentials
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("touch last login", slog.String("username", username), slog.Any("error", err))
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return Pair{}, fmt.Errorf("auth: issue token pair: %w", err)
	}
	return pair, nil
}

// VerifyAccess checks a bearer access token and returns the account ID
// it was minted for. The blacklist is consulted on every verification.
func (s *Service) VerifyAccess(ctx context.Context, token string) (int64, error) {
	claims, err := s.tokens.Parse(token, TokenAccess)
	if err != nil {
		return 0, err
	}
	revoked, err := s.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		return 0, err
	}
	if revoked {
		return 0, shared.ErrTokenBlacklisted
	}
	return claims.UserID, nil
}

// Refresh exchanges a refresh token for a new access token. Malformed,
// expired and blacklisted tokens all fail; the handler layer collapses
// them to one response so callers cannot tell which.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Parse(refreshToken, TokenRefresh)
	if err != nil {
		return "", err
	}
	revoked, err := s.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", shared.ErrTokenBlacklisted
	}
	access, err := s.tokens.IssueAccess(claims.UserID)
	if err != nil {
		return "", fmt.Errorf("auth: issue access token: %w", err)
	}
	return access, nil
}

// Logout revokes a refresh token before its natural expiry. Revoking a
// token that is already blacklisted is a no-op success, so retried
// logouts are safe. Malformed or expired input is an error.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.Parse(refreshToken, TokenRefresh)
	if err != nil {
		return shared.ErrTokenInvalid
	}
	return s.blacklist.Add(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
}
