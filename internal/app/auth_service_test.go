package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"taskplanner/internal/config"
	"taskplanner/internal/domain"
)

func testConfig() *config.Config {
	return &config.Config{
		SessionTTL: 30 * time.Minute,
		BcryptCost: bcrypt.MinCost,
	}
}

type mockUserRepo struct {
	getByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	getByIDFn    func(ctx context.Context, id int64) (*domain.User, error)
	createFn     func(ctx context.Context, email, name, passwordHash string) (*domain.User, error)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, email, name, passwordHash string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, email, name, passwordHash)
	}
	return &domain.User{ID: 1, Email: email, Name: name, PasswordHash: passwordHash}, nil
}

type mockSessionRepo struct {
	createFn           func(ctx context.Context, s *domain.Session) error
	getByTokenFn       func(ctx context.Context, token string) (*domain.Session, error)
	touchLastUsedFn    func(ctx context.Context, token string, at time.Time) error
	revokeFn           func(ctx context.Context, token string) (bool, error)
	revokeAllForUserFn func(ctx context.Context, userID int64) (int64, error)
	markExpiredFn      func(ctx context.Context, at time.Time) (int64, error)
	listActiveByUserFn func(ctx context.Context, userID int64) ([]domain.Session, error)
}

func (m *mockSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, nil
}

func (m *mockSessionRepo) TouchLastUsed(ctx context.Context, token string, at time.Time) error {
	if m.touchLastUsedFn != nil {
		return m.touchLastUsedFn(ctx, token, at)
	}
	return nil
}

func (m *mockSessionRepo) Revoke(ctx context.Context, token string) (bool, error) {
	if m.revokeFn != nil {
		return m.revokeFn(ctx, token)
	}
	return false, nil
}

func (m *mockSessionRepo) RevokeAllForUser(ctx context.Context, userID int64) (int64, error) {
	if m.revokeAllForUserFn != nil {
		return m.revokeAllForUserFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockSessionRepo) MarkExpired(ctx context.Context, at time.Time) (int64, error) {
	if m.markExpiredFn != nil {
		return m.markExpiredFn(ctx, at)
	}
	return 0, nil
}

func (m *mockSessionRepo) ListActiveByUser(ctx context.Context, userID int64) ([]domain.Session, error) {
	if m.listActiveByUserFn != nil {
		return m.listActiveByUserFn(ctx, userID)
	}
	return nil, nil
}

func TestAuthService_HashPassword_SaltsEachCall(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, &mockSessionRepo{}, testConfig())

	h1, err := svc.HashPassword("secret")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	h2, _ := svc.HashPassword("secret")
	if h1 == h2 {
		t.Error("expected distinct hashes for the same password")
	}
	if !svc.CheckPassword("secret", h1) {
		t.Error("expected hash to verify")
	}
	if svc.CheckPassword("wrong", h1) {
		t.Error("expected wrong password to fail")
	}
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	ctx := context.Background()
	users := &mockUserRepo{
		createFn: func(ctx context.Context, email, name, passwordHash string) (*domain.User, error) {
			return nil, domain.ErrDuplicateEmail
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{}, testConfig())
	_, err := svc.Register(ctx, "a@b.com", "A", "password1")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("testpass123"), bcrypt.MinCost)

	users := &mockUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: 1, Email: email, PasswordHash: string(hash)}, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{}, testConfig())
	user, err := svc.Login(ctx, "a@b.com", "testpass123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.ID != 1 {
		t.Errorf("expected user 1, got %d", user.ID)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)

	users := &mockUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: 1, Email: email, PasswordHash: string(hash)}, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{}, testConfig())
	_, err := svc.Login(ctx, "a@b.com", "wrongpass")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(&mockUserRepo{}, &mockSessionRepo{}, testConfig())

	_, err := svc.Login(ctx, "nobody@b.com", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Issue_SetsExpiry(t *testing.T) {
	ctx := context.Background()
	var stored *domain.Session
	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, s *domain.Session) error {
			stored = s
			return nil
		},
	}

	svc := NewAuthService(&mockUserRepo{}, sessions, testConfig())
	before := time.Now().UTC()
	sess, err := svc.Issue(ctx, 7, "10.0.0.1", "cli/1.0")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if stored != sess {
		t.Fatal("expected session to be persisted")
	}
	if sess.Token == "" {
		t.Error("expected a token")
	}
	if !sess.Active {
		t.Error("expected session to be active")
	}
	want := before.Add(30 * time.Minute)
	if sess.ExpiresAt.Before(want) || sess.ExpiresAt.After(want.Add(time.Second)) {
		t.Errorf("expected expiry near %v, got %v", want, sess.ExpiresAt)
	}
	if sess.IPAddress == nil || *sess.IPAddress != "10.0.0.1" {
		t.Error("expected ip address to be recorded")
	}
}

func TestAuthService_Issue_DistinctTokens(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(&mockUserRepo{}, &mockSessionRepo{}, testConfig())

	a, _ := svc.Issue(ctx, 1, "", "")
	b, _ := svc.Issue(ctx, 1, "", "")
	if a.Token == b.Token {
		t.Error("expected each issued token to be unique")
	}
	if a.IPAddress != nil || a.UserAgent != nil {
		t.Error("expected empty metadata to be stored as nil")
	}
}

func TestAuthService_Validate_Success(t *testing.T) {
	ctx := context.Background()
	touched := false
	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, token string) (*domain.Session, error) {
			return &domain.Session{
				Token:     token,
				UserID:    1,
				Active:    true,
				ExpiresAt: time.Now().UTC().Add(time.Hour),
			}, nil
		},
		touchLastUsedFn: func(ctx context.Context, token string, at time.Time) error {
			touched = true
			return nil
		},
	}

	svc := NewAuthService(&mockUserRepo{}, sessions, testConfig())
	sess, err := svc.Validate(ctx, "tok")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sess.UserID != 1 {
		t.Errorf("expected user 1, got %d", sess.UserID)
	}
	if !touched {
		t.Error("expected last_used_at to be bumped")
	}
}

func TestAuthService_Validate_UnknownToken(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(&mockUserRepo{}, &mockSessionRepo{}, testConfig())

	_, err := svc.Validate(ctx, "no-such-token")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthService_Validate_Revoked(t *testing.T) {
	ctx := context.Background()
	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, token string) (*domain.Session, error) {
			return &domain.Session{
				Token:     token,
				UserID:    1,
				Active:    false,
				ExpiresAt: time.Now().UTC().Add(time.Hour),
			}, nil
		},
	}

	svc := NewAuthService(&mockUserRepo{}, sessions, testConfig())
	_, err := svc.Validate(ctx, "revoked")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthService_Validate_ExpiredButStillActive(t *testing.T) {
	ctx := context.Background()
	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, token string) (*domain.Session, error) {
			// The sweep has not run yet, so the flag still says active.
			return &domain.Session{
				Token:     token,
				UserID:    1,
				Active:    true,
				ExpiresAt: time.Now().UTC().Add(-time.Minute),
			}, nil
		},
	}

	svc := NewAuthService(&mockUserRepo{}, sessions, testConfig())
	_, err := svc.Validate(ctx, "stale")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthService_Validate_TouchFailureIgnored(t *testing.T) {
	ctx := context.Background()
	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, token string) (*domain.Session, error) {
			return &domain.Session{
				Token:     token,
				UserID:    1,
				Active:    true,
				ExpiresAt: time.Now().UTC().Add(time.Hour),
			}, nil
		},
		touchLastUsedFn: func(ctx context.Context, token string, at time.Time) error {
			return errors.New("write timeout")
		},
	}

	svc := NewAuthService(&mockUserRepo{}, sessions, testConfig())
	if _, err := svc.Validate(ctx, "tok"); err != nil {
		t.Errorf("expected validation to succeed despite touch failure, got %v", err)
	}
}

func TestAuthService_Authenticate_UserGone(t *testing.T) {
	ctx := context.Background()
	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, token string) (*domain.Session, error) {
			return &domain.Session{
				Token:     token,
				UserID:    42,
				Active:    true,
				ExpiresAt: time.Now().UTC().Add(time.Hour),
			}, nil
		},
	}

	svc := NewAuthService(&mockUserRepo{}, sessions, testConfig())
	_, err := svc.Authenticate(ctx, "orphaned")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthService_Revoke_ReportsChange(t *testing.T) {
	ctx := context.Background()
	sessions := &mockSessionRepo{
		revokeFn: func(ctx context.Context, token string) (bool, error) {
			return token == "live", nil
		},
	}

	svc := NewAuthService(&mockUserRepo{}, sessions, testConfig())
	revoked, err := svc.Revoke(ctx, "live")
	if err != nil || !revoked {
		t.Errorf("expected revoked=true, got %v, %v", revoked, err)
	}
	revoked, err = svc.Revoke(ctx, "already-dead")
	if err != nil || revoked {
		t.Errorf("expected revoked=false on second call, got %v, %v", revoked, err)
	}
}

func TestAuthService_Refresh_SucceedsForInvalidOldToken(t *testing.T) {
	ctx := context.Background()
	var created *domain.Session
	sessions := &mockSessionRepo{
		revokeFn: func(ctx context.Context, token string) (bool, error) {
			return false, errors.New("gone")
		},
		createFn: func(ctx context.Context, s *domain.Session) error {
			created = s
			return nil
		},
	}

	svc := NewAuthService(&mockUserRepo{}, sessions, testConfig())
	sess, err := svc.Refresh(ctx, "expired-token", 5, "", "")
	if err != nil {
		t.Fatalf("expected refresh to succeed, got %v", err)
	}
	if created == nil || sess.Token == "" || sess.Token == "expired-token" {
		t.Error("expected a fresh session with a new token")
	}
	if sess.UserID != 5 {
		t.Errorf("expected user 5, got %d", sess.UserID)
	}
}

func TestAuthService_RevokeAll_ReturnsCount(t *testing.T) {
	ctx := context.Background()
	sessions := &mockSessionRepo{
		revokeAllForUserFn: func(ctx context.Context, userID int64) (int64, error) {
			return 3, nil
		},
	}

	svc := NewAuthService(&mockUserRepo{}, sessions, testConfig())
	n, err := svc.RevokeAll(ctx, 1)
	if err != nil || n != 3 {
		t.Errorf("expected 3 revoked, got %d, %v", n, err)
	}
}

func TestAuthService_SweepExpired_ReturnsCount(t *testing.T) {
	ctx := context.Background()
	sessions := &mockSessionRepo{
		markExpiredFn: func(ctx context.Context, at time.Time) (int64, error) {
			return 2, nil
		},
	}

	svc := NewAuthService(&mockUserRepo{}, sessions, testConfig())
	n, err := svc.SweepExpired(ctx)
	if err != nil || n != 2 {
		t.Errorf("expected 2 swept, got %d, %v", n, err)
	}
}

func TestAuthService_EnsureUser_CreatesOnce(t *testing.T) {
	ctx := context.Background()
	var existing *domain.User
	users := &mockUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return existing, nil
		},
		createFn: func(ctx context.Context, email, name, passwordHash string) (*domain.User, error) {
			if passwordHash != "" {
				t.Error("expected empty password hash for sso accounts")
			}
			existing = &domain.User{ID: 9, Email: email, Name: name}
			return existing, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{}, testConfig())
	first, err := svc.EnsureUser(ctx, "sso@b.com", "S")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := svc.EnsureUser(ctx, "sso@b.com", "S")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if first.ID != second.ID {
		t.Error("expected the same account on repeat login")
	}
}
