package users

import (
	"fmt"
	"strings"
	"unicode"
)

// PasswordPolicy evaluates password strength. All violations are
// returned together so the client can show every problem at once.
type PasswordPolicy interface {
	Validate(password, username, email string) []string
}

// DefaultPasswordPolicy mirrors the usual minimum-length, numeric,
// common-password and similarity checks.
type DefaultPasswordPolicy struct {
	MinLength int
}

// NewDefaultPasswordPolicy returns the policy used in production.
func NewDefaultPasswordPolicy() *DefaultPasswordPolicy {
	return &DefaultPasswordPolicy{MinLength: 8}
}

// commonPasswords is a deliberately small deny-list; entries are
// compared lowercase.
var commonPasswords = map[string]struct{}{
	"password":    {},
	"password1":   {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"1234567890":  {},
	"qwerty123":   {},
	"qwertyuiop":  {},
	"letmein":     {},
	"iloveyou":    {},
	"admin123":    {},
	"welcome1":    {},
	"sunshine":    {},
	"princess":    {},
	"football":    {},
	"baseball":    {},
	"dragon123":   {},
	"monkey123":   {},
	"abc12345":    {},
	"trustno1":    {},
}

// Validate returns every policy violation for the candidate password.
func (p *DefaultPasswordPolicy) Validate(password, username, email string) []string {
	var msgs []string

	if len(password) < p.MinLength {
		msgs = append(msgs, fmt.Sprintf(
			"This password is too short. It must contain at least %d characters.", p.MinLength))
	}

	if password != "" && isEntirelyNumeric(password) {
		msgs = append(msgs, "This password is entirely numeric.")
	}

	if _, found := commonPasswords[strings.ToLower(password)]; found {
		msgs = append(msgs, "This password is too common.")
	}

	if tooSimilar(password, username) {
		msgs = append(msgs, "The password is too similar to the username.")
	}
	if local, _, ok := strings.Cut(email, "@"); ok && tooSimilar(password, local) {
		msgs = append(msgs, "The password is too similar to the email address.")
	} else if !ok && tooSimilar(password, email) {
		msgs = append(msgs, "The password is too similar to the email address.")
	}

	return msgs
}

func isEntirelyNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// tooSimilar flags passwords that contain, or are contained by, the
// attribute (case-insensitive). Attributes shorter than 4 runes are
// ignored to avoid false positives on initials.
func tooSimilar(password, attribute string) bool {
	if len(attribute) < 4 || password == "" {
		return false
	}
	p := strings.ToLower(password)
	a := strings.ToLower(attribute)
	return strings.Contains(p, a) || strings.Contains(a, p)
}
