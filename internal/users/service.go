package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/keystone-auth/keystone/internal/platform/httpx"
)

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ExistenceChecker
	Create(ctx context.Context, u User) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
}

// Service handles account registration and profile retrieval.
type Service struct {
	logger     *slog.Logger
	repo       RepositoryPort
	validator  *Validator
	bcryptCost int
}

// NewService builds a Service instance.
func NewService(logger *slog.Logger, repo RepositoryPort, policy PasswordPolicy, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		logger:     logger,
		repo:       repo,
		validator:  NewValidator(logger, repo, policy),
		bcryptCost: bcryptCost,
	}
}

// Register validates the payload, hashes the password and persists the
// account. Validation failures and uniqueness races both come back as
// per-field errors.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, httpx.FieldErrors, error) {
	req, fieldErrs := s.validator.ValidateRegister(ctx, req)
	if fieldErrs.HasErrors() {
		return nil, fieldErrs, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("users: hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
	if err != nil {
		var dup *DuplicateFieldError
		if errors.As(err, &dup) {
			// Two registrations raced past the existence checks; the
			// unique index decided. Report it like any other
			// validation failure.
			fe := make(httpx.FieldErrors)
			switch dup.Field {
			case "email":
				fe.Add("email", "A user with this email address already exists.")
			default:
				fe.Add("username", "A user with that username already exists.")
			}
			return nil, fe, nil
		}
		return nil, nil, err
	}

	s.logger.Info("new user registered", slog.String("username", user.Username))
	return user, nil, nil
}

// Profile returns the account for the given ID.
func (s *Service) Profile(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}
