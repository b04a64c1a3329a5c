package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keystone-auth/keystone/internal/shared"
)

// Unique index names from migrations/0001_accounts.sql. The database is
// the authority on uniqueness; application-level existence checks only
// exist to produce friendly validation messages.
const (
	usernameConstraint = "accounts_username_lower_idx"
	emailConstraint    = "accounts_email_lower_idx"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, username, email, password_hash, first_name, last_name,
	COALESCE(profile_picture, ''), is_active, is_staff, is_superuser,
	last_login, date_joined, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.ProfilePicture, &u.IsActive, &u.IsStaff, &u.IsSuperuser,
		&u.LastLogin, &u.DateJoined, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new account. Duplicate username/email races lost at
// the unique index surface as DuplicateFieldError.
func (r *Repository) Create(ctx context.Context, u User) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (username, email, password_hash, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName,
	)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			field := "username"
			if pgErr.ConstraintName == emailConstraint {
				field = "email"
			}
			return nil, &DuplicateFieldError{Field: field}
		}
		return nil, fmt.Errorf("users: create: %w", err)
	}
	return created, nil
}

// FindByID fetches an account by primary key.
func (r *Repository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM accounts WHERE id = $1`, id)
	return scanUser(row)
}

// FindByUsername fetches an account by case-insensitive username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM accounts WHERE lower(username) = lower($1)`, username)
	return scanUser(row)
}

// UsernameExists reports whether a username is taken, case-insensitively.
func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE lower(username) = lower($1))`, username).Scan(&exists)
	return exists, err
}

// EmailExists reports whether an email is taken, case-insensitively.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE lower(email) = lower($1))`, email).Scan(&exists)
	return exists, err
}

// TouchLastLogin records login bookkeeping. updated_at moves with it so
// it stays >= created_at.
func (r *Repository) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE accounts SET last_login = now(), updated_at = now() WHERE id = $1`, id)
	return err
}

// DuplicateFieldError reports which field lost a uniqueness race.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return "duplicate " + e.Field
}

// Unwrap lets callers match shared.ErrDuplicate.
func (e *DuplicateFieldError) Unwrap() error {
	return shared.ErrDuplicate
}
