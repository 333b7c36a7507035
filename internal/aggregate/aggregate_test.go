package aggregate

import (
	"errors"
	"testing"
	"time"

	"finance/internal/core"

	"github.com/shopspring/decimal"
)

const food = 10

func at(d, h int) time.Time {
	return time.Date(2024, 1, d, h, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func scenario() ([]core.Transaction, []core.Category) {
	txs := []core.Transaction{
		{ID: 1, UserID: 1, Kind: core.Income, Amount: dec("100"), OccurredAt: at(1, 9)},
		{ID: 2, UserID: 1, Kind: core.Expense, Amount: dec("30"), CategoryID: food, OccurredAt: at(1, 12)},
		{ID: 3, UserID: 1, Kind: core.Expense, Amount: dec("20"), CategoryID: food, OccurredAt: at(2, 12)},
	}
	cats := []core.Category{{ID: food, UserID: 1, Name: "Food"}}
	return txs, cats
}

func TestScenario(t *testing.T) {
	txs, cats := scenario()

	totals := CategoryTotals(txs, cats)
	if len(totals) != 1 || totals[0].Label != "Food" || !totals[0].Total.Equal(dec("50")) {
		t.Fatalf("unexpected category totals %+v", totals)
	}

	s := Summarize(txs)
	if !s.Income.Equal(dec("100")) || !s.Expenses.Equal(dec("50")) || !s.Balance.Equal(dec("50")) {
		t.Fatalf("unexpected summary %+v", s)
	}

	daily, err := DailyExpenses(txs, time.UTC)
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if len(daily) != 2 || !daily[0].Total.Equal(dec("30")) || !daily[1].Total.Equal(dec("20")) {
		t.Fatalf("unexpected daily totals %+v", daily)
	}
	if daily[0].Day.Format("2006-01-02") != "2024-01-01" || daily[1].Day.Format("2006-01-02") != "2024-01-02" {
		t.Fatalf("unexpected days %v %v", daily[0].Day, daily[1].Day)
	}

	points, err := RunningBalance(txs)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	want := []string{"0", "100", "70", "50"}
	if len(points) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(points))
	}
	for i, w := range want {
		if !points[i].Balance.Equal(dec(w)) {
			t.Fatalf("point %d: expected %s, got %s", i, w, points[i].Balance)
		}
	}
	if !points[len(points)-1].Balance.Equal(s.Balance) {
		t.Fatalf("final balance %s differs from summary %s", points[len(points)-1].Balance, s.Balance)
	}
}

func TestEmptySnapshot(t *testing.T) {
	if _, err := DailyExpenses(nil, time.UTC); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if _, err := RunningBalance(nil); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	s := Summarize(nil)
	if !s.Income.IsZero() || !s.Expenses.IsZero() || !s.Balance.IsZero() {
		t.Fatalf("expected zero summary, got %+v", s)
	}
	if got := CategoryTotals(nil, nil); len(got) != 0 {
		t.Fatalf("expected no groups, got %+v", got)
	}
}

func TestDailyExpensesIncomeOnly(t *testing.T) {
	txs := []core.Transaction{{Kind: core.Income, Amount: dec("5"), OccurredAt: at(1, 1)}}
	if _, err := DailyExpenses(txs, time.UTC); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestDailyExpensesUsesLocation(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	txs := []core.Transaction{
		{Kind: core.Expense, Amount: dec("1"), OccurredAt: time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)},
		{Kind: core.Expense, Amount: dec("2"), OccurredAt: time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC)},
	}
	daily, err := DailyExpenses(txs, msk)
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if len(daily) != 1 || !daily[0].Total.Equal(dec("3")) {
		t.Fatalf("expected both expenses on one Moscow day, got %+v", daily)
	}
}

func TestCategoryTotals(t *testing.T) {
	cats := []core.Category{{ID: 1, Name: "Rent"}, {ID: 2, Name: "Fun"}}
	txs := []core.Transaction{
		{Kind: core.Expense, Amount: dec("5"), CategoryID: 2},
		{Kind: core.Income, Amount: dec("1000"), CategoryID: 1},
		{Kind: core.Expense, Amount: dec("0"), CategoryID: 1},
		{Kind: core.Expense, Amount: dec("7.25"), CategoryID: 99},
		{Kind: core.Expense, Amount: dec("0.75"), CategoryID: 2},
		{Kind: core.Expense, Amount: dec("1"), CategoryID: 0},
	}
	got := CategoryTotals(txs, cats)
	want := []struct {
		label string
		total string
	}{
		{"Fun", "5.75"},
		{UncategorizedLabel, "7.25"},
		{UncategorizedLabel, "1"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d groups, got %+v", len(want), got)
	}
	for i, w := range want {
		if got[i].Label != w.label || !got[i].Total.Equal(dec(w.total)) {
			t.Errorf("group %d: expected %s %s, got %s %s", i, w.label, w.total, got[i].Label, got[i].Total)
		}
	}
}

func TestSummaryExact(t *testing.T) {
	var txs []core.Transaction
	for i := 0; i < 10; i++ {
		txs = append(txs, core.Transaction{Kind: core.Income, Amount: dec("0.1")})
	}
	txs = append(txs, core.Transaction{Kind: core.Expense, Amount: dec("0.3")})
	s := Summarize(txs)
	if !s.Income.Equal(dec("1")) || !s.Balance.Equal(dec("0.7")) {
		t.Fatalf("expected exact decimal arithmetic, got %+v", s)
	}
	if !s.Income.Sub(s.Expenses).Equal(s.Balance) {
		t.Fatalf("income - expenses != balance")
	}
}

func TestRunningBalanceOrdersByTime(t *testing.T) {
	txs := []core.Transaction{
		{ID: 1, Kind: core.Expense, Amount: dec("10"), OccurredAt: at(3, 0)},
		{ID: 2, Kind: core.Income, Amount: dec("50"), OccurredAt: at(1, 0)},
		{ID: 3, Kind: core.Expense, Amount: dec("5"), OccurredAt: at(1, 0)},
	}
	points, err := RunningBalance(txs)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	want := []string{"0", "50", "45", "35"}
	for i, w := range want {
		if !points[i].Balance.Equal(dec(w)) {
			t.Fatalf("point %d: expected %s, got %s", i, w, points[i].Balance)
		}
	}
	if !points[0].At.Equal(at(1, 0)) {
		t.Fatalf("zero point should sit at the first timestamp, got %v", points[0].At)
	}
	if txs[0].ID != 1 {
		t.Fatalf("input reordered")
	}
}
