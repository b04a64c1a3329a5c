package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/keystone-auth/keystone/internal/shared"
)

func newTestManager() *TokenManager {
	return NewTokenManager("super-secret", 15*time.Minute, 24*time.Hour)
}

func TestIssuePairAndParse(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	pair, err := m.IssuePair(42)
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}

	access, err := m.Parse(pair.Access, TokenAccess)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if access.UserID != 42 {
		t.Fatalf("access user id: got %d want 42", access.UserID)
	}

	refresh, err := m.Parse(pair.Refresh, TokenRefresh)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if refresh.UserID != 42 {
		t.Fatalf("refresh user id: got %d want 42", refresh.UserID)
	}
	if access.ID == refresh.ID {
		t.Fatalf("access and refresh tokens must carry distinct jti")
	}
}

func TestParseRejectsWrongTokenType(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	pair, err := m.IssuePair(7)
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}

	if _, err := m.Parse(pair.Access, TokenRefresh); !errors.Is(err, shared.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for access-as-refresh, got %v", err)
	}
	if _, err := m.Parse(pair.Refresh, TokenAccess); !errors.Is(err, shared.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for refresh-as-access, got %v", err)
	}
}

func TestParseExpired(t *testing.T) {
	t.Parallel()

	m := NewTokenManager("super-secret", -time.Second, -time.Second)
	tok, err := m.IssueAccess(1)
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}

	if _, err := m.Parse(tok, TokenAccess); !errors.Is(err, shared.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseWrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := newTestManager().IssueAccess(1)
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}

	other := NewTokenManager("wrong-secret", 15*time.Minute, 24*time.Hour)
	if _, err := other.Parse(tok, TokenAccess); !errors.Is(err, shared.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for wrong secret, got %v", err)
	}
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	if _, err := newTestManager().Parse("not.a.jwt", TokenAccess); !errors.Is(err, shared.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for malformed token, got %v", err)
	}
}
