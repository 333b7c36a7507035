package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"Income", Income, true},
		{"expense", Expense, true},
		{" EXPENSE ", Expense, true},
		{"Доход", Income, true},
		{"расход", Expense, true},
		{"", 0, false},
		{"transfer", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidKind) {
			t.Fatalf("%q expected ErrInvalidKind, got %v", tc.in, err)
		}
	}
}

func TestKindText(t *testing.T) {
	b, err := Expense.MarshalText()
	if err != nil || string(b) != "Expense" {
		t.Fatalf("unexpected marshal result %q (err=%v)", b, err)
	}
	if _, err := Kind(0).MarshalText(); err == nil {
		t.Fatalf("expected error marshalling zero kind")
	}
	var k Kind
	if err := k.UnmarshalText([]byte("income")); err != nil || k != Income {
		t.Fatalf("expected Income, got %v (err=%v)", k, err)
	}
	if Income.Label() != "Доход" || Expense.Label() != "Расход" {
		t.Fatalf("unexpected labels %q %q", Income.Label(), Expense.Label())
	}
}

func TestTransactionSigned(t *testing.T) {
	amt := decimal.RequireFromString("12.50")
	if got := (Transaction{Kind: Income, Amount: amt}).Signed(); !got.Equal(amt) {
		t.Fatalf("income should be positive, got %s", got)
	}
	if got := (Transaction{Kind: Expense, Amount: amt}).Signed(); !got.Equal(amt.Neg()) {
		t.Fatalf("expense should be negative, got %s", got)
	}
}

func TestTransactionValidate(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	good := Transaction{UserID: 1, Kind: Expense, Amount: decimal.NewFromInt(10), OccurredAt: at}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	zero := good
	zero.Amount = decimal.Zero
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be accepted, got %v", err)
	}

	cases := []struct {
		name string
		mut  func(*Transaction)
		want error
	}{
		{"no user", func(tx *Transaction) { tx.UserID = 0 }, ErrInvalidUser},
		{"bad kind", func(tx *Transaction) { tx.Kind = 7 }, ErrInvalidKind},
		{"negative", func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-1) }, ErrNegativeAmount},
		{"no time", func(tx *Transaction) { tx.OccurredAt = time.Time{} }, ErrMissingTimestamp},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mut(&tx)
			if err := tx.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCategoryValidate(t *testing.T) {
	if err := (Category{UserID: 1, Name: "Food"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Category{UserID: 1, Name: "  "}).Validate(); !errors.Is(err, ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
	if err := (Category{Name: "Food"}).Validate(); !errors.Is(err, ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser, got %v", err)
	}
}
