package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"finance/internal/core"
	"finance/internal/session"
	"finance/internal/storage/memory"

	"golang.org/x/crypto/bcrypt"
)

func newAuth() *AuthService {
	a := NewAuthService(memory.New(), session.NewMemoryStore(time.Hour, 100))
	a.cost = bcrypt.MinCost
	return a
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	a := newAuth()

	u, err := a.Register(ctx, " alice ", "s3cret")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if u.ID == 0 || u.Username != "alice" {
		t.Fatalf("unexpected user %+v", u)
	}
	if u.PasswordHash == "s3cret" || !strings.HasPrefix(u.PasswordHash, "$2") {
		t.Fatalf("password must be stored as a bcrypt hash, got %q", u.PasswordHash)
	}

	token, logged, err := a.Login(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if logged.ID != u.ID || token == "" {
		t.Fatalf("unexpected login result %q %+v", token, logged)
	}

	id, err := a.Authenticate(ctx, token)
	if err != nil || id != u.ID {
		t.Fatalf("Authenticate() = %d, %v", id, err)
	}

	if err := a.Logout(ctx, token); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := a.Authenticate(ctx, token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated after logout, got %v", err)
	}
}

func TestAuthService_Rejects(t *testing.T) {
	ctx := context.Background()
	a := newAuth()
	if _, err := a.Register(ctx, "alice", "pw"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"duplicate username", func() error { _, err := a.Register(ctx, "alice", "other"); return err }, ErrUsernameTaken},
		{"empty username", func() error { _, err := a.Register(ctx, "  ", "pw"); return err }, core.ErrEmptyUsername},
		{"empty password", func() error { _, err := a.Register(ctx, "bob", ""); return err }, core.ErrEmptyPassword},
		{"long password", func() error { _, err := a.Register(ctx, "bob", strings.Repeat("p", 73)); return err }, ErrPasswordTooLong},
		{"wrong password", func() error { _, _, err := a.Login(ctx, "alice", "nope"); return err }, ErrInvalidCredentials},
		{"unknown user", func() error { _, _, err := a.Login(ctx, "carol", "pw"); return err }, ErrInvalidCredentials},
		{"empty token", func() error { _, err := a.Authenticate(ctx, ""); return err }, ErrUnauthenticated},
		{"unknown token", func() error { _, err := a.Authenticate(ctx, "deadbeef"); return err }, ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
