package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Valid account types
const (
	AccountUser  = "user"
	AccountAdmin = "admin"
)

type User struct {
	Email       string    `json:"email"`
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	AccountType string    `json:"account_type"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.AccountType == AccountAdmin
}

// LoginToken is the short-lived, single-use credential emailed to a user.
// Consumed (deleted) on verification.
type LoginToken struct {
	ID        string
	UserEmail string
	ExpiresAt time.Time
}

func (t *LoginToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// Session is the long-lived credential issued after a login token is
// verified, presented as an http-only cookie.
type Session struct {
	ID        string
	UserEmail string
	ExpiresAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

type RegisterRequest struct {
	Username string
	Email    string
}

func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.TrimSpace(r.Username)
}

func (r *RegisterRequest) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("username is required: %w", ErrInvalidArgument)
	}
	if r.Email == "" {
		return fmt.Errorf("email is required: %w", ErrInvalidArgument)
	}
	if !IsValidEmail(r.Email) {
		return fmt.Errorf("invalid email format: %w", ErrInvalidArgument)
	}
	return nil
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
