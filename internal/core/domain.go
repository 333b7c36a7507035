package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income Kind = iota + 1
	Expense
)

type (
	// Kind tells income and expense transactions apart.
	Kind int

	Transaction struct {
		ID          int64
		UserID      int64
		Kind        Kind
		Amount      decimal.Decimal
		CategoryID  int64 // 0 when unset; may point to a deleted category
		OccurredAt  time.Time
		Description string
	}

	Category struct {
		ID     int64
		UserID int64
		Name   string
	}

	User struct {
		ID           int64
		Username     string
		PasswordHash string
	}
)

var (
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrMissingCategory  = errors.New("category is required")
	ErrMissingTimestamp = errors.New("timestamp is required")
	ErrInvalidUser      = errors.New("invalid user id")
	ErrEmptyCategory    = errors.New("empty category name")
	ErrEmptyUsername    = errors.New("empty username")
	ErrEmptyPassword    = errors.New("empty password")

	ErrDescriptionTooLong  = errors.New("description too long (max 500 characters)")
	ErrCategoryNameTooLong = errors.New("category name too long (max 100 characters)")
)

// String returns the storage tag of the kind ("Income" or "Expense").
func (k Kind) String() string {
	switch k {
	case Income:
		return "Income"
	case Expense:
		return "Expense"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Label returns the display label shown in the transaction list.
func (k Kind) Label() string {
	switch k {
	case Income:
		return "Доход"
	case Expense:
		return "Расход"
	default:
		return ""
	}
}

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

// ParseKind accepts the storage tag or the display label, case-insensitive.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "доход":
		return Income, nil
	case "expense", "расход":
		return Expense, nil
	default:
		return 0, ErrInvalidKind
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, ErrInvalidKind
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Signed returns the amount with the sign it contributes to a balance.
func (t Transaction) Signed() decimal.Decimal {
	if t.Kind == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}

func (t Transaction) Validate() error {
	if t.UserID <= 0 {
		return ErrInvalidUser
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if t.OccurredAt.IsZero() {
		return ErrMissingTimestamp
	}
	if len(t.Description) > 500 {
		return ErrDescriptionTooLong
	}
	return nil
}

func (c Category) Validate() error {
	if c.UserID <= 0 {
		return ErrInvalidUser
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategory
	}
	if len(c.Name) > 100 {
		return ErrCategoryNameTooLong
	}
	return nil
}
