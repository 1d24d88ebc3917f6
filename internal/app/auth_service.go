// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"taskplanner/internal/config"
	"taskplanner/internal/domain"
)

var (
	// ErrInvalidCredentials indicates that the provided email or password was
	// incorrect. A missing account and a wrong password are deliberately
	// indistinguishable.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrUnauthenticated indicates a missing, unknown, expired, or revoked
	// session token. All of those collapse to this one error.
	ErrUnauthenticated = errors.New("could not validate credentials")
	// ErrEmailTaken indicates a registration attempt with an email that is
	// already in use.
	ErrEmailTaken = errors.New("email already registered")
	// ErrNotFound indicates that the target record does not exist or does not
	// belong to the caller.
	ErrNotFound = errors.New("not found")
)

// AuthService owns credential verification and the session lifecycle. It is
// the only writer of a session's active flag and last_used_at.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	ttl      time.Duration
	cost     int
}

// NewAuthService creates an AuthService configured from cfg.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		ttl:      cfg.SessionTTL,
		cost:     cfg.BcryptCost,
	}
}

// HashPassword produces a salted bcrypt hash. The salt is random, so equal
// inputs yield different hashes.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func (s *AuthService) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Register creates a new account. The email must not already be in use.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*domain.User, error) {
	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, email, name, hash)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// EnsureUser returns the account for email, creating it if necessary. It
// backs single sign-on, where the identity provider has already vouched for
// the email. Auto-provisioned accounts carry an empty password hash, which
// CheckPassword never matches.
func (s *AuthService) EnsureUser(ctx context.Context, email, name string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	user, err = s.users.Create(ctx, email, name, "")
	if errors.Is(err, domain.ErrDuplicateEmail) {
		// Lost a race with a concurrent first login.
		return s.users.GetByEmail(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and returns the account. It does not issue a
// session; callers compose Login with Issue so that every successful login
// adds a session without touching existing ones.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil || !s.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Issue creates a new session for the user with a fresh opaque token and
// expires_at = now + TTL. Existing sessions are never mutated.
func (s *AuthService) Issue(ctx context.Context, userID int64, ip, userAgent string) (*domain.Session, error) {
	now := time.Now().UTC()
	sess := &domain.Session{
		Token:      uuid.NewString(),
		UserID:     userID,
		Active:     true,
		ExpiresAt:  now.Add(s.ttl),
		CreatedAt:  now,
		LastUsedAt: now,
		IPAddress:  optional(ip),
		UserAgent:  optional(userAgent),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Validate resolves a token to its session iff the session is active and
// unexpired, bumping last_used_at on the way. Unknown, revoked, and expired
// tokens all yield ErrUnauthenticated.
func (s *AuthService) Validate(ctx context.Context, token string) (*domain.Session, error) {
	sess, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	now := time.Now().UTC()
	if sess == nil || !sess.Valid(now) {
		return nil, ErrUnauthenticated
	}

	// Best effort: the read result is honored even if the bump fails.
	if err := s.sessions.TouchLastUsed(ctx, token, now); err == nil {
		sess.LastUsedAt = now
	}
	return sess, nil
}

// Authenticate is the gate behind every protected operation: it validates
// the bearer token and resolves the owning user. An account deleted after
// the session was issued is treated as an invalid token, not a fault.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	sess, err := s.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// Revoke invalidates a currently-active session and reports whether a row
// changed. Revoking an unknown or already-inactive token is a no-op.
func (s *AuthService) Revoke(ctx context.Context, token string) (bool, error) {
	revoked, err := s.sessions.Revoke(ctx, token)
	if err != nil {
		return false, fmt.Errorf("revoke session: %w", err)
	}
	return revoked, nil
}

// RevokeAll invalidates every active session of the user and returns how
// many were flipped.
func (s *AuthService) RevokeAll(ctx context.Context, userID int64) (int64, error) {
	n, err := s.sessions.RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke sessions: %w", err)
	}
	return n, nil
}

// Refresh revokes the old token and issues a replacement. The revocation
// result is ignored: refresh must yield a usable session even when the old
// token was already invalid.
func (s *AuthService) Refresh(ctx context.Context, oldToken string, userID int64, ip, userAgent string) (*domain.Session, error) {
	_, _ = s.sessions.Revoke(ctx, oldToken)
	return s.Issue(ctx, userID, ip, userAgent)
}

// SweepExpired marks already-expired sessions inactive for bookkeeping.
// Those sessions fail Validate on the expiry check alone, so the sweep may
// run at any cadence without affecting validation results.
func (s *AuthService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.MarkExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("mark expired: %w", err)
	}
	return n, nil
}

// ListActiveSessions returns the user's active sessions, newest first.
func (s *AuthService) ListActiveSessions(ctx context.Context, userID int64) ([]domain.Session, error) {
	sessions, err := s.sessions.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
