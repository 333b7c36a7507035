package sheets

import (
	"context"
	"time"
)

// AuditRow is one line of the transaction change log kept outside the
// primary store.
type AuditRow struct {
	Recorded      time.Time
	Event         string
	UserID        int64
	TransactionID int64
	Kind          string
	Amount        string
	CategoryID    int64
	OccurredAt    time.Time
	Description   string
}

// Ports for outbound adapters.
type (
	AuditWriter interface {
		AppendAudit(ctx context.Context, row AuditRow) (rowRef string, err error)
	}

	AuditReader interface {
		ListAudit(ctx context.Context) ([]AuditRow, error)
	}
)
