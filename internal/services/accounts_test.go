package services

import (
	"context"
	"errors"
	"testing"

	"github.com/masudbs-23/hisab-app/internal/storage"
)

func TestAccountRegisterVerifyLogin(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewAccountService(repo)
	ctx := context.Background()

	id, err := svc.Register(ctx, "User@Example.com", "s3cret99")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero user id")
	}

	// Unverified accounts cannot log in.
	if _, err := svc.Login(ctx, "user@example.com", "s3cret99"); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified, got %v", err)
	}

	if err := svc.Verify(ctx, "user@example.com", "0000"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if err := svc.Verify(ctx, "user@example.com", "1234"); err != nil {
		t.Fatalf("verify: %v", err)
	}

	u, err := svc.Login(ctx, "USER@example.com", "s3cret99")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.ID != id {
		t.Errorf("logged in as %d, want %d", u.ID, id)
	}
	if u.PasswordHash == "s3cret99" {
		t.Error("password must not be stored in the clear")
	}

	if _, err := svc.Login(ctx, "user@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := svc.Login(ctx, "ghost@example.com", "s3cret99"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestAccountRegisterValidation(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewAccountService(repo)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "not-an-email", "s3cret99"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := svc.Register(ctx, "a@example.com", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}

	if _, err := svc.Register(ctx, "a@example.com", "s3cret99"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "A@Example.com", "other-pass"); !errors.Is(err, storage.ErrUserExists) {
		t.Errorf("expected ErrUserExists for same email, got %v", err)
	}
}
