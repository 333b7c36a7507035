// Package records declares the persistence ports of the tracker. Every
// method is scoped by user id; implementations never leak rows across
// users.
package records

import (
	"context"
	"errors"

	"finance/internal/core"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

type (
	TransactionStore interface {
		// GetTransactions returns every transaction of the user in
		// insertion order.
		GetTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error)
		AddTransaction(ctx context.Context, tx core.Transaction) (int64, error)
		// UpdateTransaction overwrites kind, amount, category and
		// description. The timestamp is immutable.
		UpdateTransaction(ctx context.Context, tx core.Transaction) error
		DeleteTransaction(ctx context.Context, userID, id int64) error
	}

	CategoryStore interface {
		GetCategories(ctx context.Context, userID int64) ([]core.Category, error)
		AddCategory(ctx context.Context, c core.Category) (int64, error)
		// DeleteCategory never touches transactions that reference it.
		DeleteCategory(ctx context.Context, userID, id int64) error
	}

	SettingsStore interface {
		// GetCurrency returns core.DefaultCurrency when nothing was saved.
		GetCurrency(ctx context.Context, userID int64) (core.Currency, error)
		SetCurrency(ctx context.Context, userID int64, c core.Currency) error
	}

	UserStore interface {
		// CreateUser returns ErrConflict when the username is taken.
		CreateUser(ctx context.Context, u core.User) (int64, error)
		GetUserByUsername(ctx context.Context, username string) (core.User, error)
	}

	Store interface {
		TransactionStore
		CategoryStore
		SettingsStore
		UserStore
		Ping(ctx context.Context) error
		Close() error
	}
)
