// Package postgres implements records.Store on PostgreSQL through a pgx
// connection pool. Amounts are NUMERIC and cross the wire as text so no
// precision is lost.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"finance/internal/core"
	"finance/internal/records"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const uniqueViolation = "23505"

var _ records.Store = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dsn, verifies the connection and applies migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := RunMigrations(dsn); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func nullCategory(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

func scanTransaction(row pgx.Row) (core.Transaction, error) {
	var (
		tx       core.Transaction
		kind     string
		amount   string
		category *int64
	)
	if err := row.Scan(&tx.ID, &tx.UserID, &kind, &amount, &category, &tx.OccurredAt, &tx.Description); err != nil {
		return core.Transaction{}, err
	}
	var err error
	if tx.Kind, err = core.ParseKind(kind); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", tx.ID, err)
	}
	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d amount %q: %w", tx.ID, amount, err)
	}
	if category != nil {
		tx.CategoryID = *category
	}
	return tx, nil
}

const selectTransaction = `SELECT id, user_id, kind, amount::text, category_id, occurred_at, description FROM transactions`

func (s *Store) GetTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := s.pool.Query(ctx, selectTransaction+` WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (s *Store) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	tx, err := scanTransaction(s.pool.QueryRow(ctx, selectTransaction+` WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, records.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (s *Store) AddTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO transactions (user_id, kind, amount, category_id, occurred_at, description)
		VALUES ($1, $2, $3::numeric, $4, $5, $6)
		RETURNING id
	`, tx.UserID, tx.Kind.String(), tx.Amount.String(), nullCategory(tx.CategoryID), tx.OccurredAt, tx.Description).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction saved to Postgres",
		"id", id,
		"user_id", tx.UserID,
		"kind", tx.Kind.String(),
		"amount", tx.Amount.String())
	return id, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE transactions
		SET kind = $1, amount = $2::numeric, category_id = $3, description = $4
		WHERE id = $5 AND user_id = $6
	`, tx.Kind.String(), tx.Amount.String(), nullCategory(tx.CategoryID), tx.Description, tx.ID, tx.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return expectRow(tag, "transaction", tx.ID)
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return expectRow(tag, "transaction", id)
}

func expectRow(tag pgconn.CommandTag, what string, id int64) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %d: %w", what, id, records.ErrNotFound)
	}
	return nil
}

func (s *Store) GetCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, user_id, name FROM categories WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	cats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Category, error) {
		var c core.Category
		err := row.Scan(&c.ID, &c.UserID, &c.Name)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect categories: %w", err)
	}
	return cats, nil
}

func (s *Store) AddCategory(ctx context.Context, c core.Category) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO categories (user_id, name) VALUES ($1, $2) RETURNING id`,
		c.UserID, strings.TrimSpace(c.Name)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	return id, nil
}

func (s *Store) DeleteCategory(ctx context.Context, userID, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return expectRow(tag, "category", id)
}

func (s *Store) GetCurrency(ctx context.Context, userID int64) (core.Currency, error) {
	var code string
	err := s.pool.QueryRow(ctx, `SELECT currency FROM settings WHERE user_id = $1`, userID).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.DefaultCurrency, nil
	}
	if err != nil {
		return "", fmt.Errorf("get currency: %w", err)
	}
	return core.NormalizeCurrency(code), nil
}

func (s *Store) SetCurrency(ctx context.Context, userID int64, c core.Currency) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO settings (user_id, currency) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET currency = EXCLUDED.currency
	`, userID, string(c))
	if err != nil {
		return fmt.Errorf("upsert currency: %w", err)
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, u core.User) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id`,
		u.Username, u.PasswordHash).Scan(&id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return 0, fmt.Errorf("user %q: %w", u.Username, records.ErrConflict)
	}
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	slog.InfoContext(ctx, "User registered", "id", id)
	return id, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	var u core.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash FROM users WHERE username = $1`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %q: %w", username, records.ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
