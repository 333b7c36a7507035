// Package query filters and orders a snapshot of transactions for the list
// view. Every function is pure and returns a new slice.
package query

import (
	"errors"
	"slices"
	"strings"

	"finance/internal/core"
)

// SortKey selects the field the list is ordered by.
type SortKey int

const (
	SortNone SortKey = iota
	SortKind
	SortAmount
	SortDate
	SortDescription
)

type Direction int

const (
	Ascending Direction = iota
	Descending
)

var (
	ErrInvalidSortKey   = errors.New("invalid sort key")
	ErrInvalidDirection = errors.New("invalid sort direction")
)

func (k SortKey) String() string {
	switch k {
	case SortKind:
		return "kind"
	case SortAmount:
		return "amount"
	case SortDate:
		return "date"
	case SortDescription:
		return "description"
	default:
		return ""
	}
}

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ParseSortKey accepts the API names and the column headers of the list.
// An empty string means no ordering.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "kind", "type", "тип":
		return SortKind, nil
	case "amount", "сумма":
		return SortAmount, nil
	case "date", "дата":
		return SortDate, nil
	case "description", "описание":
		return SortDescription, nil
	default:
		return SortNone, ErrInvalidSortKey
	}
}

// ParseDirection defaults to ascending on empty input.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending", "по возрастанию":
		return Ascending, nil
	case "desc", "descending", "по убыванию":
		return Descending, nil
	default:
		return Ascending, ErrInvalidDirection
	}
}

// Filter keeps transactions whose kind tag, amount or description contains
// q, compared case-insensitively. Blank queries keep everything.
func Filter(txs []core.Transaction, q string) []core.Transaction {
	if strings.TrimSpace(q) == "" {
		return slices.Clone(txs)
	}
	needle := strings.ToLower(q)
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if matches(tx, needle) {
			out = append(out, tx)
		}
	}
	return out
}

func matches(tx core.Transaction, needle string) bool {
	return strings.Contains(strings.ToLower(tx.Kind.String()), needle) ||
		strings.Contains(tx.Amount.String(), needle) ||
		strings.Contains(strings.ToLower(tx.Description), needle)
}

// Sort returns a stably ordered copy. Descending inverts the comparison, so
// equal elements keep their input order in both directions.
func Sort(txs []core.Transaction, key SortKey, dir Direction) []core.Transaction {
	out := slices.Clone(txs)
	cmp := comparator(key)
	if cmp == nil {
		return out
	}
	if dir == Descending {
		asc := cmp
		cmp = func(a, b core.Transaction) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, cmp)
	return out
}

func comparator(key SortKey) func(a, b core.Transaction) int {
	switch key {
	case SortKind:
		return func(a, b core.Transaction) int {
			return strings.Compare(strings.ToLower(a.Kind.String()), strings.ToLower(b.Kind.String()))
		}
	case SortAmount:
		return func(a, b core.Transaction) int { return a.Amount.Cmp(b.Amount) }
	case SortDate:
		return func(a, b core.Transaction) int { return a.OccurredAt.Compare(b.OccurredAt) }
	case SortDescription:
		return func(a, b core.Transaction) int {
			return strings.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description))
		}
	default:
		return nil
	}
}

// Apply filters then sorts, which is the order the list view uses.
func Apply(txs []core.Transaction, q string, key SortKey, dir Direction) []core.Transaction {
	return Sort(Filter(txs, q), key, dir)
}
