package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"finance/internal/core"
	"finance/internal/records"

	"github.com/shopspring/decimal"
)

func TestAddAndList(t *testing.T) {
	ctx := context.Background()
	s := New()
	tx := core.Transaction{UserID: 1, Kind: core.Income, Amount: decimal.NewFromInt(5), OccurredAt: time.Now()}
	if _, err := s.AddTransaction(ctx, tx); err != nil {
		t.Fatalf("add: %v", err)
	}
	tx.UserID = 2
	if _, err := s.AddTransaction(ctx, tx); err != nil {
		t.Fatalf("add: %v", err)
	}
	got, _ := s.GetTransactions(ctx, 1)
	if len(got) != 1 || got[0].UserID != 1 {
		t.Fatalf("expected one row for user 1, got %+v", got)
	}
}

func TestAddRejectsInvalid(t *testing.T) {
	s := New()
	_, err := s.AddTransaction(context.Background(), core.Transaction{UserID: 1, Kind: core.Expense, Amount: decimal.NewFromInt(-1), OccurredAt: time.Now()})
	if !errors.Is(err, core.ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestUpdateKeepsTimestamp(t *testing.T) {
	ctx := context.Background()
	s := New()
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	id, _ := s.AddTransaction(ctx, core.Transaction{UserID: 1, Kind: core.Expense, Amount: decimal.NewFromInt(1), OccurredAt: at})

	err := s.UpdateTransaction(ctx, core.Transaction{ID: id, UserID: 1, Kind: core.Expense, Amount: decimal.NewFromInt(2), OccurredAt: time.Now()})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.GetTransaction(ctx, 1, id)
	if !got.OccurredAt.Equal(at) || !got.Amount.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("unexpected transaction %+v", got)
	}
	if err := s.UpdateTransaction(ctx, core.Transaction{ID: id, UserID: 2}); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user, got %v", err)
	}
}

func TestUsersAndCurrency(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.CreateUser(ctx, core.User{Username: "a", PasswordHash: "h"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateUser(ctx, core.User{Username: "a"}); !errors.Is(err, records.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if c, _ := s.GetCurrency(ctx, 1); c != core.RUB {
		t.Fatalf("expected RUB, got %q", c)
	}
	_ = s.SetCurrency(ctx, 1, core.EUR)
	if c, _ := s.GetCurrency(ctx, 1); c != core.EUR {
		t.Fatalf("expected EUR, got %q", c)
	}
}

func TestConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.AddTransaction(ctx, core.Transaction{UserID: 1, Kind: core.Income, Amount: decimal.NewFromInt(1), OccurredAt: time.Now()})
		}()
	}
	wg.Wait()
	got, _ := s.GetTransactions(ctx, 1)
	if len(got) != 50 {
		t.Fatalf("expected 50 transactions, got %d", len(got))
	}
	seen := map[int64]bool{}
	for _, tx := range got {
		if seen[tx.ID] {
			t.Fatalf("duplicate id %d", tx.ID)
		}
		seen[tx.ID] = true
	}
}
