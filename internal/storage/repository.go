package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finance/internal/core"
	"finance/internal/records"

	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// TimeLayout is how occurred_at is written. Values are wall-clock times in
// the repository location.
const TimeLayout = "2006-01-02 15:04:05"

const dateOnlyLayout = "2006-01-02"

var _ records.Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db  *sql.DB
	loc *time.Location
}

// NewSQLiteRepository opens (or creates) the database at dbPath and applies
// pending migrations. loc is the wall clock timestamps are stored in.
func NewSQLiteRepository(dbPath string, loc *time.Location) (*SQLiteRepository, error) {
	if loc == nil {
		loc = time.UTC
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite has a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, loc: loc}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) formatTime(t time.Time) string {
	return t.In(r.loc).Format(TimeLayout)
}

func (r *SQLiteRepository) parseTime(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(TimeLayout, s, r.loc); err == nil {
		return t, nil
	}
	// Legacy rows that escaped the backfill.
	t, err := time.ParseInLocation(dateOnlyLayout, s, r.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse occurred_at %q: %w", s, err)
	}
	return t.Add(12 * time.Hour), nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullCategory(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id > 0}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteRepository) scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx       core.Transaction
		kind     string
		amount   string
		category sql.NullInt64
		occurred string
	)
	if err := row.Scan(&tx.ID, &tx.UserID, &kind, &amount, &category, &occurred, &tx.Description); err != nil {
		return core.Transaction{}, err
	}

	var err error
	if tx.Kind, err = core.ParseKind(kind); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", tx.ID, err)
	}
	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d amount %q: %w", tx.ID, amount, err)
	}
	if tx.OccurredAt, err = r.parseTime(occurred); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", tx.ID, err)
	}
	if category.Valid {
		tx.CategoryID = category.Int64
	}
	return tx, nil
}

const transactionColumns = `id, user_id, kind, amount, category_id, occurred_at, description`

func (r *SQLiteRepository) GetTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := r.scanTransaction(rows)
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

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	tx, err := r.scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, records.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) AddTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, kind, amount, category_id, occurred_at, description)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tx.UserID, tx.Kind.String(), tx.Amount.String(), nullCategory(tx.CategoryID),
		r.formatTime(tx.OccurredAt), tx.Description)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read transaction id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"user_id", tx.UserID,
		"kind", tx.Kind.String(),
		"amount", tx.Amount.String())

	return id, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET kind = ?, amount = ?, category_id = ?, description = ?
		 WHERE id = ? AND user_id = ?`,
		tx.Kind.String(), tx.Amount.String(), nullCategory(tx.CategoryID), tx.Description,
		tx.ID, tx.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if err := expectRow(res, "transaction", tx.ID); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction updated in SQLite", "id", tx.ID, "user_id", tx.UserID)
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if err := expectRow(res, "transaction", id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id, "user_id", userID)
	return nil
}

func expectRow(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, records.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) GetCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name FROM categories WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) AddCategory(ctx context.Context, c core.Category) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name) VALUES (?, ?)`, c.UserID, strings.TrimSpace(c.Name))
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read category id: %w", err)
	}
	slog.InfoContext(ctx, "Category saved to SQLite", "id", id, "user_id", c.UserID)
	return id, nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return expectRow(res, "category", id)
}

func (r *SQLiteRepository) GetCurrency(ctx context.Context, userID int64) (core.Currency, error) {
	var code string
	err := r.db.QueryRowContext(ctx,
		`SELECT currency FROM settings WHERE user_id = ?`, userID).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultCurrency, nil
	}
	if err != nil {
		return "", fmt.Errorf("get currency: %w", err)
	}
	return core.NormalizeCurrency(code), nil
}

func (r *SQLiteRepository) SetCurrency(ctx context.Context, userID int64, c core.Currency) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (user_id, currency) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET currency = excluded.currency`,
		userID, string(c))
	if err != nil {
		return fmt.Errorf("upsert currency: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`, u.Username, u.PasswordHash)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("user %q: %w", u.Username, records.ErrConflict)
	}
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read user id: %w", err)
	}
	slog.InfoContext(ctx, "User registered", "id", id)
	return id, nil
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %q: %w", username, records.ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
