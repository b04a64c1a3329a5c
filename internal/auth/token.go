package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/keystone-auth/keystone/internal/shared"
)

// TokenType distinguishes the two halves of a token pair.
type TokenType string

const (
	// TokenAccess is the short-lived per-request credential.
	TokenAccess TokenType = "access"
	// TokenRefresh is the longer-lived credential exchanged for new
	// access tokens and revocable via the blacklist.
	TokenRefresh TokenType = "refresh"
)

// Claims carries the registered claims plus the account identity and
// the token kind. The jti registered claim keys the blacklist.
type Claims struct {
	jwt.RegisteredClaims
	UserID    int64     `json:"user_id"`
	TokenType TokenType `json:"token_type"`
}

// Pair is an access/refresh token pair as returned by login.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenManager signs and verifies HS256 tokens with a process-wide
// secret fixed at startup.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssuePair mints a fresh access/refresh pair for the account. Each
// token gets its own jti.
func (m *TokenManager) IssuePair(userID int64) (Pair, error) {
	access, err := m.sign(userID, TokenAccess, m.accessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("auth: sign access token: %w", err)
	}
	refresh, err := m.sign(userID, TokenRefresh, m.refreshTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("auth: sign refresh token: %w", err)
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// IssueAccess mints a single access token, used by the refresh flow.
func (m *TokenManager) IssueAccess(userID int64) (string, error) {
	return m.sign(userID, TokenAccess, m.accessTTL)
}

func (m *TokenManager) sign(userID int64, kind TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		TokenType: kind,
	})
	return token.SignedString(m.secret)
}

// Parse verifies the signature and expiry and checks that the token is
// of the wanted kind. An access token presented where a refresh token
// is expected (or vice versa) is invalid.
func (m *TokenManager) Parse(tokenString string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, shared.ErrTokenExpired
		}
		return nil, shared.ErrTokenInvalid
	}
	if !token.Valid || claims.TokenType != want || claims.ID == "" {
		return nil, shared.ErrTokenInvalid
	}
	return claims, nil
}
