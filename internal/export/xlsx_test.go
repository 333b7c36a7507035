package export

import (
	"bytes"
	"testing"
	"time"

	"finance/internal/aggregate"
	"finance/internal/core"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var msk = time.FixedZone("MSK", 3*60*60)

func sampleData() ([]core.Transaction, []core.Category) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cats := []core.Category{{ID: 1, UserID: 1, Name: "Еда"}}
	txs := []core.Transaction{
		{ID: 1, UserID: 1, Kind: core.Income, Amount: decimal.NewFromInt(100), OccurredAt: at, Description: "Salary"},
		{ID: 2, UserID: 1, Kind: core.Expense, Amount: decimal.RequireFromString("30.5"), CategoryID: 1, OccurredAt: at, Description: "Lunch"},
		{ID: 3, UserID: 1, Kind: core.Expense, Amount: decimal.NewFromInt(20), CategoryID: 99, OccurredAt: at.Add(24 * time.Hour)},
	}
	return txs, cats
}

func TestWrite(t *testing.T) {
	txs, cats := sampleData()
	var buf bytes.Buffer
	if err := Write(&buf, txs, cats, core.EUR, msk); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != TransactionsSheet || sheets[1] != SummarySheet {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	rows, err := f.GetRows(TransactionsSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][5] != "Категория" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[2][2] != "30.5" || rows[2][3] != "2024-01-01 15:00:00" || rows[2][5] != "Еда" {
		t.Errorf("unexpected row %v", rows[2])
	}
	if rows[3][5] != aggregate.UncategorizedLabel {
		t.Errorf("missing category should be labelled %q, got %q", aggregate.UncategorizedLabel, rows[3][5])
	}

	summary, _ := f.GetRows(SummarySheet)
	want := map[string]string{
		"Валюта": "евро",
		"Баланс": "49.50",
		"Еда":    "30.50",
	}
	for _, line := range summary {
		if v, ok := want[line[0]]; ok {
			if line[1] != v {
				t.Errorf("summary %s = %q, want %q", line[0], line[1], v)
			}
			delete(want, line[0])
		}
	}
	if len(want) != 0 {
		t.Errorf("summary missing lines %v", want)
	}
}

func TestWorkbook_Empty(t *testing.T) {
	f, err := Workbook(nil, nil, core.RUB, nil)
	if err != nil {
		t.Fatalf("Workbook() error = %v", err)
	}
	defer f.Close()
	rows, _ := f.GetRows(TransactionsSheet)
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
	summary, _ := f.GetRows(SummarySheet)
	if len(summary) != 4 || summary[3][1] != "0.00" {
		t.Fatalf("unexpected summary %v", summary)
	}
}
