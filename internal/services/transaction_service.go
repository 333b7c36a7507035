package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"finance/internal/amqp"
	"finance/internal/core"
	"finance/internal/export"
	applog "finance/internal/log"
	"finance/internal/query"
	"finance/internal/records"
	"finance/internal/report"
)

var (
	ErrUnknownCategory = errors.New("category does not exist")
	ErrEmptyEdit       = errors.New("edit changes nothing")
)

// IsValidation reports whether err is a rejected input, as opposed to a
// storage or transport failure.
func IsValidation(err error) bool {
	for _, target := range []error{
		core.ErrInvalidKind,
		core.ErrInvalidAmount,
		core.ErrNegativeAmount,
		core.ErrMissingCategory,
		core.ErrMissingTimestamp,
		core.ErrEmptyCategory,
		core.ErrEmptyUsername,
		core.ErrEmptyPassword,
		core.ErrDescriptionTooLong,
		core.ErrCategoryNameTooLong,
		query.ErrInvalidSortKey,
		query.ErrInvalidDirection,
		report.ErrUnknownKind,
		ErrUnknownCategory,
		ErrEmptyEdit,
		ErrPasswordTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	Publish(ctx context.Context, t amqp.EventType, tx core.Transaction) error
}

// ViewState is the search text and sort order of one list request.
type ViewState struct {
	Query string
	Sort  query.SortKey
	Dir   query.Direction
}

func ParseViewState(q, sort, dir string) (ViewState, error) {
	key, err := query.ParseSortKey(sort)
	if err != nil {
		return ViewState{}, err
	}
	d, err := query.ParseDirection(dir)
	if err != nil {
		return ViewState{}, err
	}
	return ViewState{Query: q, Sort: key, Dir: d}, nil
}

// NewTransaction is the user input for Add. Amount is the raw text typed by
// the user. A nil OccurredAt means now.
type NewTransaction struct {
	Kind        core.Kind
	Amount      string
	CategoryID  int64
	Description string
	OccurredAt  *time.Time
}

// TransactionEdit carries the fields to overwrite. Nil or empty fields are
// kept. The timestamp cannot be edited.
type TransactionEdit struct {
	Amount      string
	Kind        *core.Kind
	CategoryID  *int64
	Description *string
}

// TransactionService runs the user facing operations against one snapshot
// of the store per call and publishes change events best effort.
type TransactionService struct {
	store     records.Store
	publisher EventPublisher
	loc       *time.Location
	now       func() time.Time
}

// NewTransactionService wires the service. publisher may be nil.
func NewTransactionService(store records.Store, publisher EventPublisher, loc *time.Location) *TransactionService {
	if loc == nil {
		loc = time.UTC
	}
	return &TransactionService{store: store, publisher: publisher, loc: loc, now: time.Now}
}

func (s *TransactionService) Location() *time.Location {
	return s.loc
}

// List returns the user's transactions filtered and sorted per view.
func (s *TransactionService) List(ctx context.Context, userID int64, view ViewState) ([]core.Transaction, error) {
	txs, err := s.store.GetTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return query.Apply(txs, view.Query, view.Sort, view.Dir), nil
}

func (s *TransactionService) Rows(ctx context.Context, userID int64, view ViewState) ([]query.Row, error) {
	txs, err := s.List(ctx, userID, view)
	if err != nil {
		return nil, err
	}
	return query.Rows(txs, s.loc), nil
}

func (s *TransactionService) requireCategory(ctx context.Context, userID, categoryID int64) error {
	if categoryID <= 0 {
		return core.ErrMissingCategory
	}
	cats, err := s.store.GetCategories(ctx, userID)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	for _, c := range cats {
		if c.ID == categoryID {
			return nil
		}
	}
	return fmt.Errorf("category %d: %w", categoryID, ErrUnknownCategory)
}

// Add validates in and stores a new transaction. Nothing is written when
// any field is rejected.
func (s *TransactionService) Add(ctx context.Context, userID int64, in NewTransaction) (core.Transaction, error) {
	if !in.Kind.Valid() {
		return core.Transaction{}, core.ErrInvalidKind
	}
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.requireCategory(ctx, userID, in.CategoryID); err != nil {
		return core.Transaction{}, err
	}

	at := s.now()
	if in.OccurredAt != nil {
		at = *in.OccurredAt
	}
	tx := core.Transaction{
		UserID:      userID,
		Kind:        in.Kind,
		Amount:      amount,
		CategoryID:  in.CategoryID,
		OccurredAt:  at.In(s.loc).Truncate(time.Second),
		Description: strings.TrimSpace(in.Description),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	id, err := s.store.AddTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	tx.ID = id
	s.publish(ctx, amqp.EventCreated, tx)
	return tx, nil
}

// Edit applies e to the transaction id.
func (s *TransactionService) Edit(ctx context.Context, userID, id int64, e TransactionEdit) (core.Transaction, error) {
	if e.Amount == "" && e.Kind == nil && e.CategoryID == nil && e.Description == nil {
		return core.Transaction{}, ErrEmptyEdit
	}
	tx, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, err
	}

	if e.Amount != "" {
		if tx.Amount, err = core.ParseAmount(e.Amount); err != nil {
			return core.Transaction{}, err
		}
	}
	if e.Kind != nil {
		tx.Kind = *e.Kind
	}
	if e.CategoryID != nil {
		if err := s.requireCategory(ctx, userID, *e.CategoryID); err != nil {
			return core.Transaction{}, err
		}
		tx.CategoryID = *e.CategoryID
	}
	if e.Description != nil {
		tx.Description = strings.TrimSpace(*e.Description)
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.publish(ctx, amqp.EventUpdated, tx)
	return tx, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id int64) error {
	// Fetched first so the event carries what was removed.
	tx, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, amqp.EventDeleted, tx)
	return nil
}

var eventOps = map[amqp.EventType]string{
	amqp.EventCreated: applog.OpCreate,
	amqp.EventUpdated: applog.OpUpdate,
	amqp.EventDeleted: applog.OpDelete,
}

func (s *TransactionService) publish(ctx context.Context, t amqp.EventType, tx core.Transaction) {
	applog.NewStructuredLogger(applog.FromContext(ctx)).LogTransactionChanged(ctx, eventOps[t],
		tx.UserID, tx.ID, tx.Kind.String(), core.FormatAmount(tx.Amount), tx.CategoryID)

	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping change event", "type", t)
		return
	}
	if err := s.publisher.Publish(ctx, t, tx); err != nil {
		// The store write already succeeded.
		slog.ErrorContext(ctx, "Failed to publish change event",
			"type", t,
			"transaction_id", tx.ID,
			"error", err)
	}
}

// Report builds one report over the user's whole transaction set.
func (s *TransactionService) Report(ctx context.Context, userID int64, kind report.Kind) (report.Report, error) {
	txs, err := s.store.GetTransactions(ctx, userID)
	if err != nil {
		return report.Report{}, fmt.Errorf("load transactions: %w", err)
	}
	cats, err := s.store.GetCategories(ctx, userID)
	if err != nil {
		return report.Report{}, fmt.Errorf("load categories: %w", err)
	}
	cur, err := s.store.GetCurrency(ctx, userID)
	if err != nil {
		return report.Report{}, fmt.Errorf("load currency: %w", err)
	}
	return report.Build(kind, txs, cats, cur.Label(), s.loc)
}

func (s *TransactionService) Categories(ctx context.Context, userID int64) ([]core.Category, error) {
	cats, err := s.store.GetCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return cats, nil
}

func (s *TransactionService) AddCategory(ctx context.Context, userID int64, name string) (core.Category, error) {
	c := core.Category{UserID: userID, Name: strings.TrimSpace(name)}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	id, err := s.store.AddCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}
	c.ID = id
	return c, nil
}

// DeleteCategory leaves transactions pointing at id untouched; reports show
// them as uncategorized.
func (s *TransactionService) DeleteCategory(ctx context.Context, userID, id int64) error {
	return s.store.DeleteCategory(ctx, userID, id)
}

func (s *TransactionService) Currency(ctx context.Context, userID int64) (core.Currency, error) {
	return s.store.GetCurrency(ctx, userID)
}

// SetCurrency accepts a code or a display label. Unknown input saves RUB.
func (s *TransactionService) SetCurrency(ctx context.Context, userID int64, value string) (core.Currency, error) {
	c := core.NormalizeCurrency(value)
	if err := s.store.SetCurrency(ctx, userID, c); err != nil {
		return "", fmt.Errorf("set currency: %w", err)
	}
	return c, nil
}

// Export writes the filtered, sorted list as an XLSX workbook.
func (s *TransactionService) Export(ctx context.Context, userID int64, view ViewState, w io.Writer) error {
	txs, err := s.List(ctx, userID, view)
	if err != nil {
		return err
	}
	cats, err := s.Categories(ctx, userID)
	if err != nil {
		return err
	}
	cur, err := s.store.GetCurrency(ctx, userID)
	if err != nil {
		return fmt.Errorf("load currency: %w", err)
	}
	return export.Write(w, txs, cats, cur, s.loc)
}
