// Package session issues and resolves opaque bearer tokens.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

// Store maps tokens to user ids. Lookup returns ErrNotFound for unknown or
// expired tokens.
type Store interface {
	Create(ctx context.Context, userID int64) (string, error)
	Lookup(ctx context.Context, token string) (int64, error)
	Delete(ctx context.Context, token string) error
}

func newToken() string {
	return uuid.NewString()
}
