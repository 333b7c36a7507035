package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"finance/internal/core"
	"finance/internal/records"
	"finance/internal/session"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("missing or expired session")
	ErrPasswordTooLong    = errors.New("password longer than 72 bytes")
)

// AuthService registers users and exchanges credentials for session tokens.
type AuthService struct {
	users    records.UserStore
	sessions session.Store
	cost     int
}

func NewAuthService(users records.UserStore, sessions session.Store) *AuthService {
	return &AuthService{users: users, sessions: sessions, cost: bcrypt.DefaultCost}
}

func checkCredentials(username, password string) error {
	if username == "" {
		return core.ErrEmptyUsername
	}
	if password == "" {
		return core.ErrEmptyPassword
	}
	if len(password) > 72 {
		return ErrPasswordTooLong
	}
	return nil
}

func (a *AuthService) Register(ctx context.Context, username, password string) (core.User, error) {
	username = strings.TrimSpace(username)
	if err := checkCredentials(username, password); err != nil {
		return core.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := core.User{Username: username, PasswordHash: string(hash)}
	id, err := a.users.CreateUser(ctx, u)
	if errors.Is(err, records.ErrConflict) {
		return core.User{}, ErrUsernameTaken
	}
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	u.ID = id
	return u, nil
}

// Login returns a fresh session token for valid credentials.
func (a *AuthService) Login(ctx context.Context, username, password string) (string, core.User, error) {
	username = strings.TrimSpace(username)
	if err := checkCredentials(username, password); err != nil {
		return "", core.User{}, ErrInvalidCredentials
	}

	u, err := a.users.GetUserByUsername(ctx, username)
	if errors.Is(err, records.ErrNotFound) {
		return "", core.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", core.User{}, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		slog.WarnContext(ctx, "Rejected login", "user_id", u.ID)
		return "", core.User{}, ErrInvalidCredentials
	}

	token, err := a.sessions.Create(ctx, u.ID)
	if err != nil {
		return "", core.User{}, fmt.Errorf("create session: %w", err)
	}
	return token, u, nil
}

func (a *AuthService) Logout(ctx context.Context, token string) error {
	return a.sessions.Delete(ctx, token)
}

// Authenticate resolves a bearer token to a user id.
func (a *AuthService) Authenticate(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrUnauthenticated
	}
	id, err := a.sessions.Lookup(ctx, token)
	if errors.Is(err, session.ErrNotFound) {
		return 0, ErrUnauthenticated
	}
	if err != nil {
		return 0, fmt.Errorf("lookup session: %w", err)
	}
	return id, nil
}
