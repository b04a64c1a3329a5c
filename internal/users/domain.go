package users

import (
	"strings"
	"time"
)

// User represents a persisted account.
type User struct {
	ID             int64
	Username       string
	Email          string
	PasswordHash   string
	FirstName      string
	LastName       string
	ProfilePicture string
	IsActive       bool
	IsStaff        bool
	IsSuperuser    bool
	LastLogin      *time.Time
	DateJoined     time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Profile is the public representation of an account. The password hash
// never appears here.
type Profile struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	FullName       string    `json:"full_name"`
	ProfilePicture *string   `json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewProfile builds the public view of a user.
func NewProfile(u *User) Profile {
	p := Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.ProfilePicture != "" {
		pic := u.ProfilePicture
		p.ProfilePicture = &pic
	}
	return p
}
