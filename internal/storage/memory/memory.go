// Package memory is a process-local records.Store for development and
// tests. Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"finance/internal/core"
	"finance/internal/records"
)

var _ records.Store = (*Store)(nil)

type Store struct {
	mu       sync.Mutex
	nextID   int64
	txs      []core.Transaction
	cats     []core.Category
	currency map[int64]core.Currency
	users    map[string]core.User
}

func New() *Store {
	return &Store{
		currency: make(map[int64]core.Currency),
		users:    make(map[string]core.User),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) GetTransactions(_ context.Context, userID int64) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *Store) find(userID, id int64) int {
	return slices.IndexFunc(s.txs, func(tx core.Transaction) bool {
		return tx.ID == id && tx.UserID == userID
	})
}

func (s *Store) GetTransaction(_ context.Context, userID, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(userID, id)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, records.ErrNotFound)
	}
	return s.txs[i], nil
}

func (s *Store) AddTransaction(_ context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.id()
	s.txs = append(s.txs, tx)
	return tx.ID, nil
}

func (s *Store) UpdateTransaction(_ context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(tx.UserID, tx.ID)
	if i < 0 {
		return fmt.Errorf("transaction %d: %w", tx.ID, records.ErrNotFound)
	}
	cur := &s.txs[i]
	cur.Kind = tx.Kind
	cur.Amount = tx.Amount
	cur.CategoryID = tx.CategoryID
	cur.Description = tx.Description
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(userID, id)
	if i < 0 {
		return fmt.Errorf("transaction %d: %w", id, records.ErrNotFound)
	}
	s.txs = slices.Delete(s.txs, i, i+1)
	return nil
}

func (s *Store) GetCategories(_ context.Context, userID int64) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.cats {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) AddCategory(_ context.Context, c core.Category) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	c.Name = strings.TrimSpace(c.Name)
	s.cats = append(s.cats, c)
	return c.ID, nil
}

func (s *Store) DeleteCategory(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.cats, func(c core.Category) bool { return c.ID == id && c.UserID == userID })
	if i < 0 {
		return fmt.Errorf("category %d: %w", id, records.ErrNotFound)
	}
	s.cats = slices.Delete(s.cats, i, i+1)
	return nil
}

func (s *Store) GetCurrency(_ context.Context, userID int64) (core.Currency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.currency[userID]; ok {
		return c, nil
	}
	return core.DefaultCurrency, nil
}

func (s *Store) SetCurrency(_ context.Context, userID int64, c core.Currency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currency[userID] = c
	return nil
}

func (s *Store) CreateUser(_ context.Context, u core.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return 0, fmt.Errorf("user %q: %w", u.Username, records.ErrConflict)
	}
	u.ID = s.id()
	s.users[u.Username] = u
	return u.ID, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return core.User{}, fmt.Errorf("user %q: %w", username, records.ErrNotFound)
	}
	return u, nil
}
