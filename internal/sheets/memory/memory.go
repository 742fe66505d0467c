package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/sheets"
)

// Store keeps exported rows in memory. The worker uses it when no
// spreadsheet is configured, and tests use it to inspect exports.
type Store struct {
	mu   sync.Mutex
	rows []sheets.LedgerRow
}

var _ sheets.LedgerWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// AppendRow stores the row and returns a synthetic row reference.
func (s *Store) AppendRow(_ context.Context, row sheets.LedgerRow) (string, error) {
	if row.ID <= 0 {
		return "", fmt.Errorf("invalid row id %d", row.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []sheets.LedgerRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.LedgerRow(nil), s.rows...)
}
