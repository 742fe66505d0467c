package sheets

import (
	"context"
	"strconv"
	"time"

	"fintrack/internal/amqp"
)

// Header is the first row of an export sheet.
var Header = []string{"timestamp", "action", "kind", "id", "user_id", "date", "category", "amount", "description"}

// LedgerRow is one audit line of the ledger export.
type LedgerRow struct {
	Timestamp   time.Time
	Action      amqp.Action
	Kind        string
	ID          int64
	UserID      int64
	Date        string
	Category    string
	Amount      string
	Description string
}

// Ports for outbound adapters.
type (
	LedgerWriter interface {
		AppendRow(ctx context.Context, row LedgerRow) (rowRef string, err error)
	}
)

// RowFromEvent flattens a ledger event into an export row.
func RowFromEvent(ev *amqp.TransactionEvent) (LedgerRow, error) {
	tx, err := ev.Transaction()
	if err != nil {
		return LedgerRow{}, err
	}
	return LedgerRow{
		Timestamp:   ev.Timestamp.UTC(),
		Action:      ev.Action,
		Kind:        tx.Kind.String(),
		ID:          tx.ID,
		UserID:      tx.UserID,
		Date:        tx.Date.String(),
		Category:    tx.Category,
		Amount:      tx.Amount.Decimal(),
		Description: tx.Description,
	}, nil
}

// Values returns the row cells in Header order.
func (r LedgerRow) Values() []string {
	return []string{
		r.Timestamp.Format(time.RFC3339),
		string(r.Action),
		r.Kind,
		strconv.FormatInt(r.ID, 10),
		strconv.FormatInt(r.UserID, 10),
		r.Date,
		r.Category,
		r.Amount,
		r.Description,
	}
}
