package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrTokenExpired occurs when a token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid occurs when a token is malformed or has a bad signature.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenBlacklisted occurs when a refresh token has been revoked.
	ErrTokenBlacklisted = errors.New("token blacklisted")
)
