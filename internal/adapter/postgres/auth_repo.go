package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taskplanner/internal/domain"
)

var _ domain.UserRepository = (*DB)(nil)

// GetByEmail retrieves a user by email, or nil when no such user exists.
func (d *DB) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := d.sql.QueryRowContext(ctx,
		"SELECT id, email, name, password_hash, avatar, created_at, updated_at FROM users WHERE email = $1",
		email,
	).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID retrieves a user by ID, or nil when no such user exists.
func (d *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := d.sql.QueryRowContext(ctx,
		"SELECT id, email, name, password_hash, avatar, created_at, updated_at FROM users WHERE id = $1",
		id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user. A duplicate email yields
// domain.ErrDuplicateEmail.
func (d *DB) Create(ctx context.Context, email, name, passwordHash string) (*domain.User, error) {
	var u domain.User
	err := d.sql.QueryRowContext(ctx,
		`INSERT INTO users (email, name, password_hash, created_at) VALUES ($1, $2, $3, $4)
		 RETURNING id, email, name, password_hash, avatar, created_at, updated_at`,
		email, name, passwordHash, time.Now().UTC(),
	).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, err
	}
	return &u, nil
}

// SessionRepo implements session repository operations on DB.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo wraps a DB as a SessionRepository.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

var _ domain.SessionRepository = (*SessionRepo)(nil)

// Create inserts a new session row. The token's primary-key constraint is
// what guarantees global uniqueness under concurrent issuance.
func (r *SessionRepo) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, active, expires_at, created_at, last_used_at, ip_address, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.Token, s.UserID, s.Active, s.ExpiresAt, s.CreatedAt, s.LastUsedAt, s.IPAddress, s.UserAgent,
	)
	return err
}

// GetByToken retrieves a session row regardless of validity, or nil when the
// token is unknown.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.sql.QueryRowContext(ctx,
		`SELECT token, user_id, active, expires_at, created_at, last_used_at, ip_address, user_agent
		 FROM sessions WHERE token = $1`,
		token,
	).Scan(&s.Token, &s.UserID, &s.Active, &s.ExpiresAt, &s.CreatedAt, &s.LastUsedAt, &s.IPAddress, &s.UserAgent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// TouchLastUsed bumps last_used_at. Concurrent bumps on the same token are
// benign; last writer wins.
func (r *SessionRepo) TouchLastUsed(ctx context.Context, token string, at time.Time) error {
	_, err := r.db.sql.ExecContext(ctx,
		"UPDATE sessions SET last_used_at = $2 WHERE token = $1", token, at)
	return err
}

// Revoke flips active=false for a currently-active session. The active
// predicate makes concurrent revokes and sweeps converge without
// double-counting.
func (r *SessionRepo) Revoke(ctx context.Context, token string) (bool, error) {
	res, err := r.db.sql.ExecContext(ctx,
		"UPDATE sessions SET active = FALSE WHERE token = $1 AND active = TRUE", token)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RevokeAllForUser flips every active session of the user and returns the
// count affected.
func (r *SessionRepo) RevokeAllForUser(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.sql.ExecContext(ctx,
		"UPDATE sessions SET active = FALSE WHERE user_id = $1 AND active = TRUE", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkExpired flips active=false on sessions already past their expiry.
func (r *SessionRepo) MarkExpired(ctx context.Context, at time.Time) (int64, error) {
	res, err := r.db.sql.ExecContext(ctx,
		"UPDATE sessions SET active = FALSE WHERE active = TRUE AND expires_at <= $1", at)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListActiveByUser returns the user's active sessions, newest first.
func (r *SessionRepo) ListActiveByUser(ctx context.Context, userID int64) ([]domain.Session, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT token, user_id, active, expires_at, created_at, last_used_at, ip_address, user_agent
		 FROM sessions WHERE user_id = $1 AND active = TRUE ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.Token, &s.UserID, &s.Active, &s.ExpiresAt, &s.CreatedAt, &s.LastUsedAt, &s.IPAddress, &s.UserAgent); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
