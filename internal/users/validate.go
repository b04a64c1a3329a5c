package users

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/keystone-auth/keystone/internal/platform/httpx"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ExistenceChecker answers case-insensitive uniqueness questions. The
// database indexes remain the final authority; these checks exist to
// produce field-level messages before the insert.
type ExistenceChecker interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// Validator checks registration and login payloads field by field,
// collecting every failure rather than stopping at the first.
type Validator struct {
	logger   *slog.Logger
	store    ExistenceChecker
	policy   PasswordPolicy
	validate *validator.Validate
}

// NewValidator constructs a Validator.
func NewValidator(logger *slog.Logger, store ExistenceChecker, policy PasswordPolicy) *Validator {
	return &Validator{
		logger:   logger,
		store:    store,
		policy:   policy,
		validate: validator.New(),
	}
}

// ValidateRegister checks a registration payload. Fields are validated
// in a fixed order (username, email, password, first_name, last_name,
// password confirmation) and all failures are collected. On success the
// returned request carries the normalized values: lowercase username and
// email, title-cased names.
func (v *Validator) ValidateRegister(ctx context.Context, req RegisterRequest) (RegisterRequest, httpx.FieldErrors) {
	fe := make(httpx.FieldErrors)

	req.Username = v.validateUsername(ctx, fe, req.Username)
	req.Email = v.validateEmail(ctx, fe, req.Email)
	v.validatePassword(fe, req.Password, req.Username, req.Email)
	req.FirstName = v.validateName(fe, "first_name", "First name", req.FirstName)
	req.LastName = v.validateName(fe, "last_name", "Last name", req.LastName)

	if req.Password != "" && req.Password2 != "" && req.Password != req.Password2 {
		fe.Add("password2", "Passwords don't match.")
	}
	if req.Password2 == "" {
		fe.Add("password2", "This field is required.")
	}

	return req, fe
}

func (v *Validator) validateUsername(ctx context.Context, fe httpx.FieldErrors, value string) string {
	if value == "" {
		fe.Add("username", "This field is required.")
		return value
	}
	if !usernamePattern.MatchString(value) {
		fe.Add("username", "Username can only contain letters, numbers, underscores, hyphens, and periods.")
	}
	if utf8.RuneCountInString(value) < 3 {
		fe.Add("username", "Username must be at least 3 characters long.")
	}
	if utf8.RuneCountInString(value) > 30 {
		fe.Add("username", "Username cannot exceed 30 characters.")
	}
	taken, err := v.store.UsernameExists(ctx, value)
	if err != nil {
		v.logger.Error("username existence check", slog.Any("error", err))
	} else if taken {
		fe.Add("username", "A user with that username already exists.")
	}
	return strings.ToLower(value)
}

func (v *Validator) validateEmail(ctx context.Context, fe httpx.FieldErrors, value string) string {
	if value == "" {
		fe.Add("email", "This field is required.")
		return value
	}
	if err := v.validate.Var(value, "email"); err != nil {
		fe.Add("email", "Please enter a valid email address.")
	}
	taken, err := v.store.EmailExists(ctx, value)
	if err != nil {
		v.logger.Error("email existence check", slog.Any("error", err))
	} else if taken {
		fe.Add("email", "A user with this email address already exists.")
	}
	return strings.ToLower(value)
}

func (v *Validator) validatePassword(fe httpx.FieldErrors, password, username, email string) {
	if password == "" {
		fe.Add("password", "This field is required.")
		return
	}
	for _, msg := range v.policy.Validate(password, username, email) {
		fe.Add("password", msg)
	}
}

func (v *Validator) validateName(fe httpx.FieldErrors, field, label, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		fe.Add(field, fmt.Sprintf("%s is required.", label))
		return value
	}
	// Bounds count characters, not bytes, so multibyte names measure
	// the same as ASCII ones.
	if utf8.RuneCountInString(value) < 2 {
		fe.Add(field, fmt.Sprintf("%s must be at least 2 characters long.", label))
	}
	if utf8.RuneCountInString(value) > 50 {
		fe.Add(field, fmt.Sprintf("%s cannot exceed 50 characters.", label))
	}
	// cases.Caser carries internal state and is not safe for concurrent
	// use, so a fresh one is built per call rather than shared across
	// requests.
	return cases.Title(language.English).String(strings.ToLower(value))
}
