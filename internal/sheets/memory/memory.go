package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ports "finance/internal/sheets"
)

var (
	_ ports.AuditWriter = (*Store)(nil)
	_ ports.AuditReader = (*Store)(nil)
)

var ErrEmptyEvent = errors.New("audit row has no event")

// Store keeps audit rows in process. Used when no spreadsheet is configured
// and in tests.
type Store struct {
	mu   sync.Mutex
	rows []ports.AuditRow
}

func New() *Store {
	return &Store{}
}

// AppendAudit stores the row and returns a synthetic row reference.
func (s *Store) AppendAudit(_ context.Context, row ports.AuditRow) (string, error) {
	if row.Event == "" {
		return "", ErrEmptyEvent
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

func (s *Store) ListAudit(_ context.Context) ([]ports.AuditRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.AuditRow(nil), s.rows...), nil
}
