// Package aggregate derives report figures from a transaction snapshot.
//
// All arithmetic is exact decimal. Functions never reorder or modify their
// input.
package aggregate

import (
	"errors"
	"slices"
	"time"

	"finance/internal/core"

	"github.com/shopspring/decimal"
)

// UncategorizedLabel names the group of expenses whose category cannot be
// resolved, either because none was set or because it was deleted.
const UncategorizedLabel = "Без категории"

// ErrNoData is returned by time-series aggregations with nothing to plot.
var ErrNoData = errors.New("no data")

type (
	CategoryTotal struct {
		CategoryID int64
		Label      string
		Total      decimal.Decimal
	}

	Summary struct {
		Income   decimal.Decimal
		Expenses decimal.Decimal
		Balance  decimal.Decimal
	}

	// DailyTotal is the sum of expenses on one calendar day. Day is
	// midnight in the aggregation location.
	DailyTotal struct {
		Day   time.Time
		Total decimal.Decimal
	}

	BalancePoint struct {
		At      time.Time
		Balance decimal.Decimal
	}
)

// CategoryTotals sums expenses per category id in order of first
// appearance. Groups that do not add up to a positive amount are dropped.
func CategoryTotals(txs []core.Transaction, cats []core.Category) []CategoryTotal {
	names := make(map[int64]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}

	index := make(map[int64]int)
	var groups []CategoryTotal
	for _, tx := range txs {
		if tx.Kind != core.Expense {
			continue
		}
		i, ok := index[tx.CategoryID]
		if !ok {
			label, found := names[tx.CategoryID]
			if !found {
				label = UncategorizedLabel
			}
			i = len(groups)
			index[tx.CategoryID] = i
			groups = append(groups, CategoryTotal{CategoryID: tx.CategoryID, Label: label, Total: decimal.Zero})
		}
		groups[i].Total = groups[i].Total.Add(tx.Amount)
	}

	out := groups[:0]
	for _, g := range groups {
		if g.Total.IsPositive() {
			out = append(out, g)
		}
	}
	return out
}

func Summarize(txs []core.Transaction) Summary {
	s := Summary{Income: decimal.Zero, Expenses: decimal.Zero}
	for _, tx := range txs {
		switch tx.Kind {
		case core.Income:
			s.Income = s.Income.Add(tx.Amount)
		case core.Expense:
			s.Expenses = s.Expenses.Add(tx.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expenses)
	return s
}

// DailyExpenses groups expenses by calendar day in loc, ascending.
func DailyExpenses(txs []core.Transaction, loc *time.Location) ([]DailyTotal, error) {
	if loc == nil {
		loc = time.UTC
	}
	type ymd struct {
		y int
		m time.Month
		d int
	}
	totals := make(map[ymd]decimal.Decimal)
	for _, tx := range txs {
		if tx.Kind != core.Expense {
			continue
		}
		y, m, d := tx.OccurredAt.In(loc).Date()
		k := ymd{y, m, d}
		totals[k] = totals[k].Add(tx.Amount)
	}
	if len(totals) == 0 {
		return nil, ErrNoData
	}

	out := make([]DailyTotal, 0, len(totals))
	for k, total := range totals {
		out = append(out, DailyTotal{Day: time.Date(k.y, k.m, k.d, 0, 0, 0, 0, loc), Total: total})
	}
	slices.SortFunc(out, func(a, b DailyTotal) int { return a.Day.Compare(b.Day) })
	return out, nil
}

// RunningBalance walks transactions in time order and emits the balance
// after each one, preceded by a zero point at the first timestamp.
func RunningBalance(txs []core.Transaction) ([]BalancePoint, error) {
	if len(txs) == 0 {
		return nil, ErrNoData
	}
	ordered := slices.Clone(txs)
	slices.SortStableFunc(ordered, func(a, b core.Transaction) int {
		return a.OccurredAt.Compare(b.OccurredAt)
	})

	points := make([]BalancePoint, 0, len(ordered)+1)
	balance := decimal.Zero
	points = append(points, BalancePoint{At: ordered[0].OccurredAt, Balance: balance})
	for _, tx := range ordered {
		balance = balance.Add(tx.Signed())
		points = append(points, BalancePoint{At: tx.OccurredAt, Balance: balance})
	}
	return points, nil
}
