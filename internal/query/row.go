package query

import (
	"time"

	"finance/internal/core"
)

// DateLayout is the display and storage layout of a transaction timestamp.
const DateLayout = "2006-01-02 15:04:05"

// Row is one line of the transaction list as shown to the user.
type Row struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	KindLabel   string `json:"kindLabel"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
	CategoryID  int64  `json:"categoryId,omitempty"`
}

// Rows renders transactions in loc, keeping their order.
func Rows(txs []core.Transaction, loc *time.Location) []Row {
	if loc == nil {
		loc = time.UTC
	}
	rows := make([]Row, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, Row{
			ID:          tx.ID,
			Kind:        tx.Kind.String(),
			KindLabel:   tx.Kind.Label(),
			Amount:      tx.Amount.String(),
			Date:        tx.OccurredAt.In(loc).Format(DateLayout),
			Description: tx.Description,
			CategoryID:  tx.CategoryID,
		})
	}
	return rows
}
