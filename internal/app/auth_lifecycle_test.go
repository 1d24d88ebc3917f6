package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskplanner/internal/adapter/memory"
	"taskplanner/internal/domain"
)

// These tests run the whole session lifecycle against the in-memory
// adapter instead of per-method mocks.

func newLifecycleService(t *testing.T) (*AuthService, *memory.DB) {
	t.Helper()
	db := memory.New()
	return NewAuthService(db, db.NewSessionRepo(), testConfig()), db
}

func TestAuthService_Lifecycle_IssueValidateRevoke(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLifecycleService(t)

	user, err := svc.Register(ctx, "a@b.com", "A", "password1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	sess, err := svc.Issue(ctx, user.ID, "10.0.0.1", "cli/1.0")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	got, err := svc.Validate(ctx, sess.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got.UserID != user.ID {
		t.Errorf("expected user %d, got %d", user.ID, got.UserID)
	}

	revoked, err := svc.Revoke(ctx, sess.Token)
	if err != nil || !revoked {
		t.Fatalf("expected first revoke to report a change, got %v, %v", revoked, err)
	}

	if _, err := svc.Validate(ctx, sess.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated after revoke, got %v", err)
	}

	revoked, err = svc.Revoke(ctx, sess.Token)
	if err != nil || revoked {
		t.Errorf("expected second revoke to be a no-op, got %v, %v", revoked, err)
	}
}

func TestAuthService_Lifecycle_RevokeAllIsolation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLifecycleService(t)

	alice, _ := svc.Register(ctx, "alice@b.com", "Alice", "password1")
	bob, _ := svc.Register(ctx, "bob@b.com", "Bob", "password1")

	a1, _ := svc.Issue(ctx, alice.ID, "", "")
	a2, _ := svc.Issue(ctx, alice.ID, "", "")
	b1, _ := svc.Issue(ctx, bob.ID, "", "")

	n, err := svc.RevokeAll(ctx, alice.ID)
	if err != nil {
		t.Fatalf("revoke all: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 sessions invalidated, got %d", n)
	}

	for _, token := range []string{a1.Token, a2.Token} {
		if _, err := svc.Validate(ctx, token); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("expected alice's token to be dead, got %v", err)
		}
	}
	if _, err := svc.Validate(ctx, b1.Token); err != nil {
		t.Errorf("expected bob's session to survive, got %v", err)
	}
}

func TestAuthService_Lifecycle_RefreshReplacesToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLifecycleService(t)

	user, _ := svc.Register(ctx, "a@b.com", "A", "password1")
	old, _ := svc.Issue(ctx, user.ID, "", "")

	fresh, err := svc.Refresh(ctx, old.Token, user.ID, "", "")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if fresh.Token == old.Token {
		t.Error("expected refresh to mint a new token")
	}

	if _, err := svc.Validate(ctx, old.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected old token to be dead after refresh, got %v", err)
	}
	if _, err := svc.Validate(ctx, fresh.Token); err != nil {
		t.Errorf("expected new token to validate, got %v", err)
	}
}

func TestAuthService_Lifecycle_SweepDoesNotChangeValidation(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	svc := NewAuthService(db, db.NewSessionRepo(), testConfig())

	user, _ := svc.Register(ctx, "a@b.com", "A", "password1")
	live, _ := svc.Issue(ctx, user.ID, "", "")

	// Plant an already-expired session directly; the flag still says active.
	stale := &domain.Session{
		Token:      "stale-token",
		UserID:     user.ID,
		Active:     true,
		ExpiresAt:  time.Now().UTC().Add(-time.Hour),
		CreatedAt:  time.Now().UTC().Add(-2 * time.Hour),
		LastUsedAt: time.Now().UTC().Add(-2 * time.Hour),
	}
	if err := db.NewSessionRepo().Create(ctx, stale); err != nil {
		t.Fatalf("plant session: %v", err)
	}

	if _, err := svc.Validate(ctx, stale.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected stale token to fail before sweep, got %v", err)
	}

	n, err := svc.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 session swept, got %d", n)
	}

	if _, err := svc.Validate(ctx, stale.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected stale token to fail after sweep too, got %v", err)
	}
	if _, err := svc.Validate(ctx, live.Token); err != nil {
		t.Errorf("expected live token to survive the sweep, got %v", err)
	}

	// A second sweep finds nothing new.
	n, err = svc.SweepExpired(ctx)
	if err != nil || n != 0 {
		t.Errorf("expected idempotent sweep, got %d, %v", n, err)
	}
}

func TestAuthService_Lifecycle_ListActiveSessions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLifecycleService(t)

	user, _ := svc.Register(ctx, "a@b.com", "A", "password1")
	s1, _ := svc.Issue(ctx, user.ID, "", "")
	s2, _ := svc.Issue(ctx, user.ID, "", "")

	if _, err := svc.Revoke(ctx, s1.Token); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	sessions, err := svc.ListActiveSessions(ctx, user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 active session, got %d", len(sessions))
	}
	if sessions[0].Token != s2.Token {
		t.Error("expected the surviving session to be listed")
	}
}
