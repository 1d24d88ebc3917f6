// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateEmail is returned by UserRepository.Create when the email is
// already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// User represents an account in the system.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Avatar       *string    `json:"avatar,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// Session represents one authenticated client attachment. Revoked sessions
// are retained with Active=false for audit; rows are never deleted.
type Session struct {
	Token      string    `json:"-"`
	UserID     int64     `json:"user_id"`
	Active     bool      `json:"active"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
	IPAddress  *string   `json:"ip_address,omitempty"`
	UserAgent  *string   `json:"user_agent,omitempty"`
}

// Valid reports whether the session is usable at the given instant. Expiry
// is checked independently of the Active flag, so a session past expires_at
// is invalid even before a sweep flips the flag.
func (s *Session) Valid(now time.Time) bool {
	return s.Active && s.ExpiresAt.After(now)
}

// UserRepository is the port for user persistence.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, email, name, passwordHash string) (*User, error)
}

// SessionRepository is the port for session persistence. The session
// service is the only writer of the active flag and last_used_at.
type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	// GetByToken returns the session row regardless of validity, or
	// (nil, nil) when no such token exists.
	GetByToken(ctx context.Context, token string) (*Session, error)
	TouchLastUsed(ctx context.Context, token string, at time.Time) error
	// Revoke flips active=false on a currently-active session and reports
	// whether a row actually changed.
	Revoke(ctx context.Context, token string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID int64) (int64, error)
	// MarkExpired flips active=false on every active session whose
	// expires_at is at or before the given instant.
	MarkExpired(ctx context.Context, at time.Time) (int64, error)
	ListActiveByUser(ctx context.Context, userID int64) ([]Session, error)
}
