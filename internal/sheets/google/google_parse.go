package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"finance/internal/core"
	ports "finance/internal/sheets"
)

const cellTimeLayout = "2006-01-02 15:04:05"

func headerRow() []any {
	return []any{"Recorded", "Event", "User", "Transaction", "Kind", "Amount", "Category", "Occurred", "Description"}
}

// auditValues lays row out in auditColumns order. A zero category is left blank.
func auditValues(row ports.AuditRow, loc *time.Location) []any {
	category := ""
	if row.CategoryID > 0 {
		category = strconv.FormatInt(row.CategoryID, 10)
	}
	occurred := ""
	if !row.OccurredAt.IsZero() {
		occurred = row.OccurredAt.In(loc).Format(cellTimeLayout)
	}
	return []any{
		row.Recorded.In(loc).Format(cellTimeLayout),
		row.Event,
		row.UserID,
		row.TransactionID,
		row.Kind,
		row.Amount,
		category,
		occurred,
		row.Description,
	}
}

func parseAuditRow(raw []any, loc *time.Location) (ports.AuditRow, error) {
	cells := toStrings(raw)
	if len(cells) < 4 {
		return ports.AuditRow{}, fmt.Errorf("expected at least 4 cells, got %d", len(cells))
	}

	var (
		row ports.AuditRow
		err error
	)
	if row.Recorded, err = time.ParseInLocation(cellTimeLayout, cells[0], loc); err != nil {
		return ports.AuditRow{}, fmt.Errorf("recorded: %w", err)
	}
	row.Event = cells[1]
	if row.UserID, err = strconv.ParseInt(cells[2], 10, 64); err != nil {
		return ports.AuditRow{}, fmt.Errorf("user: %w", err)
	}
	if row.TransactionID, err = strconv.ParseInt(cells[3], 10, 64); err != nil {
		return ports.AuditRow{}, fmt.Errorf("transaction: %w", err)
	}
	row.Kind = safeGet(cells, 4)
	if amount := safeGet(cells, 5); amount != "" {
		// The sheet may render numbers with a decimal comma.
		d, err := core.ParseAmount(amount)
		if err != nil {
			return ports.AuditRow{}, fmt.Errorf("amount %q: %w", amount, err)
		}
		row.Amount = d.String()
	}
	if cat := safeGet(cells, 6); cat != "" {
		if row.CategoryID, err = strconv.ParseInt(cat, 10, 64); err != nil {
			return ports.AuditRow{}, fmt.Errorf("category: %w", err)
		}
	}
	if occurred := safeGet(cells, 7); occurred != "" {
		if row.OccurredAt, err = time.ParseInLocation(cellTimeLayout, occurred, loc); err != nil {
			return ports.AuditRow{}, fmt.Errorf("occurred: %w", err)
		}
	}
	row.Description = safeGet(cells, 8)
	return row, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx >= 0 && idx < len(arr) {
		return arr[idx]
	}
	return ""
}
