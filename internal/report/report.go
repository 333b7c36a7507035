// Package report turns aggregation results into display-ready reports: a
// text block plus one chart series. It never reads from storage.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"finance/internal/aggregate"
	"finance/internal/core"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	Categories Kind = "categories"
	Summary    Kind = "summary"
	Dynamics   Kind = "dynamics"
	Daily      Kind = "daily"
	Savings    Kind = "savings"
)

type Chart string

const (
	Pie    Chart = "pie"
	Column Chart = "column"
	Line   Chart = "line"
)

const (
	axisDate    = "Дата"
	labelLayout = "02.01"

	noExpensesText     = "У вас пока нет расходов для отображения."
	noTransactionsText = "У вас пока нет транзакций для отображения."
)

var ErrUnknownKind = errors.New("unknown report kind")

type (
	Point struct {
		Label   string          `json:"label"`
		Value   decimal.Decimal `json:"value"`
		Display string          `json:"display"`
	}

	Report struct {
		Kind   Kind    `json:"kind"`
		Title  string  `json:"title,omitempty"`
		Text   string  `json:"text"`
		Chart  Chart   `json:"chart,omitempty"`
		Series []Point `json:"series"`
		AxisX  string  `json:"axisX,omitempty"`
		AxisY  string  `json:"axisY,omitempty"`
		Empty  bool    `json:"empty"`
	}
)

// Kinds lists every report in menu order.
func Kinds() []Kind {
	return []Kind{Categories, Summary, Dynamics, Daily, Savings}
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func point(label string, v decimal.Decimal) Point {
	return Point{Label: label, Value: v, Display: core.FormatAmount(v)}
}

// CategoryReport lists expense totals per category, one line each.
func CategoryReport(totals []aggregate.CategoryTotal, currency string) Report {
	lines := make([]string, 0, len(totals))
	series := make([]Point, 0, len(totals))
	for _, t := range totals {
		lines = append(lines, fmt.Sprintf("%s: %s %s", t.Label, t.Total, currency))
		if t.Total.IsPositive() {
			series = append(series, point(t.Label, t.Total))
		}
	}
	return Report{
		Kind:   Categories,
		Text:   strings.Join(lines, "\n"),
		Chart:  Pie,
		Series: series,
	}
}

// SummaryReport always prints all three figures; zero slices are left out
// of the chart.
func SummaryReport(s aggregate.Summary, currency string) Report {
	text := fmt.Sprintf("Доходы: %s %s\nРасходы: %s %s\nБаланс: %s %s",
		s.Income, currency, s.Expenses, currency, s.Balance, currency)

	series := make([]Point, 0, 2)
	if s.Income.IsPositive() {
		series = append(series, point("Доходы", s.Income))
	}
	if s.Expenses.IsPositive() {
		series = append(series, point("Расходы", s.Expenses))
	}
	return Report{Kind: Summary, Text: text, Chart: Pie, Series: series}
}

// DailyReport renders per-day expense totals. kind selects between the
// dynamics and daily wording; both share the same figures.
func DailyReport(kind Kind, days []aggregate.DailyTotal, err error, currency string) (Report, error) {
	var text, title string
	switch kind {
	case Dynamics:
		text, title = fmt.Sprintf("Динамика расходов (%s)", currency), "Расходы по дням"
	case Daily:
		text, title = fmt.Sprintf("Ежедневные траты (%s)", currency), "Ежедневные траты"
	default:
		return Report{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if errors.Is(err, aggregate.ErrNoData) {
		return Report{Kind: kind, Text: noExpensesText, Series: []Point{}, Empty: true}, nil
	}
	if err != nil {
		return Report{}, err
	}

	series := make([]Point, 0, len(days))
	for _, d := range days {
		series = append(series, point(d.Day.Format(labelLayout), d.Total))
	}
	return Report{
		Kind:   kind,
		Title:  title,
		Text:   text,
		Chart:  Column,
		Series: series,
		AxisX:  axisDate,
		AxisY:  fmt.Sprintf("Сумма (%s)", currency),
	}, nil
}

// SavingsReport plots the running balance. Labels are rendered in loc.
func SavingsReport(points []aggregate.BalancePoint, err error, currency string, loc *time.Location) (Report, error) {
	if errors.Is(err, aggregate.ErrNoData) {
		return Report{Kind: Savings, Text: noTransactionsText, Series: []Point{}, Empty: true}, nil
	}
	if err != nil {
		return Report{}, err
	}
	if loc == nil {
		loc = time.UTC
	}

	series := make([]Point, 0, len(points))
	for _, p := range points {
		series = append(series, point(p.At.In(loc).Format(labelLayout), p.Balance))
	}
	return Report{
		Kind:   Savings,
		Title:  "Накопления",
		Text:   fmt.Sprintf("График накоплений (%s)", currency),
		Chart:  Line,
		Series: series,
		AxisX:  axisDate,
		AxisY:  fmt.Sprintf("Баланс (%s)", currency),
	}, nil
}

// Build runs the aggregation behind kind over one snapshot and assembles
// the report. currency is the display label, not the code.
func Build(kind Kind, txs []core.Transaction, cats []core.Category, currency string, loc *time.Location) (Report, error) {
	switch kind {
	case Categories:
		return CategoryReport(aggregate.CategoryTotals(txs, cats), currency), nil
	case Summary:
		return SummaryReport(aggregate.Summarize(txs), currency), nil
	case Dynamics, Daily:
		days, err := aggregate.DailyExpenses(txs, loc)
		return DailyReport(kind, days, err, currency)
	case Savings:
		points, err := aggregate.RunningBalance(txs)
		return SavingsReport(points, err, currency, loc)
	default:
		return Report{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
