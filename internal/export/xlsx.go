// Package export renders a user's transactions as an XLSX workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"finance/internal/aggregate"
	"finance/internal/core"
	"finance/internal/query"

	"github.com/xuri/excelize/v2"
)

const (
	TransactionsSheet = "Транзакции"
	SummarySheet      = "Итоги"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var transactionHeaders = []string{"ID", "Тип", "Сумма", "Дата", "Описание", "Категория"}

// Workbook builds the export: one row per transaction in the given order,
// then a summary sheet with totals and per-category expenses.
func Workbook(txs []core.Transaction, cats []core.Category, currency core.Currency, loc *time.Location) (*excelize.File, error) {
	if loc == nil {
		loc = time.UTC
	}
	names := make(map[int64]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", TransactionsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("amount style: %w", err)
	}

	for i, header := range transactionHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(TransactionsSheet, cell, header)
	}
	for i, r := range query.Rows(txs, loc) {
		row := i + 2
		category, ok := names[r.CategoryID]
		if !ok {
			category = aggregate.UncategorizedLabel
		}
		amount, _ := txs[i].Amount.Float64()
		f.SetCellValue(TransactionsSheet, fmt.Sprintf("A%d", row), r.ID)
		f.SetCellValue(TransactionsSheet, fmt.Sprintf("B%d", row), r.KindLabel)
		f.SetCellValue(TransactionsSheet, fmt.Sprintf("C%d", row), amount)
		f.SetCellValue(TransactionsSheet, fmt.Sprintf("D%d", row), r.Date)
		f.SetCellValue(TransactionsSheet, fmt.Sprintf("E%d", row), r.Description)
		f.SetCellValue(TransactionsSheet, fmt.Sprintf("F%d", row), category)
	}
	if len(txs) > 0 {
		if err := f.SetCellStyle(TransactionsSheet, "C2", fmt.Sprintf("C%d", len(txs)+1), amountStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("style amounts: %w", err)
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("summary sheet: %w", err)
	}
	label := currency.Label()
	s := aggregate.Summarize(txs)
	lines := [][2]string{
		{"Валюта", label},
		{core.Income.Label(), core.FormatAmount(s.Income)},
		{core.Expense.Label(), core.FormatAmount(s.Expenses)},
		{"Баланс", core.FormatAmount(s.Balance)},
	}
	for _, ct := range aggregate.CategoryTotals(txs, cats) {
		lines = append(lines, [2]string{ct.Label, core.FormatAmount(ct.Total)})
	}
	for i, l := range lines {
		f.SetCellValue(SummarySheet, fmt.Sprintf("A%d", i+1), l[0])
		f.SetCellValue(SummarySheet, fmt.Sprintf("B%d", i+1), l[1])
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Write streams the workbook for txs to w.
func Write(w io.Writer, txs []core.Transaction, cats []core.Category, currency core.Currency, loc *time.Location) error {
	f, err := Workbook(txs, cats, currency, loc)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
