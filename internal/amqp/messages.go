package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// Action names the ledger mutation an event describes.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

func (a Action) Valid() bool {
	switch a {
	case ActionCreated, ActionUpdated, ActionDeleted:
		return true
	}
	return false
}

// TransactionEvent is published after every successful ledger mutation.
// It carries the full record so consumers never need to read the store,
// which matters for deletions.
type TransactionEvent struct {
	Action      Action    `json:"action"`
	Kind        core.Kind `json:"kind"`
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Category    string    `json:"category"`
	AmountCents int64     `json:"amount_cents"`
	Date        string    `json:"date"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewTransactionEvent snapshots tx for the given action.
func NewTransactionEvent(action Action, tx core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Action:      action,
		Kind:        tx.Kind,
		ID:          tx.ID,
		UserID:      tx.UserID,
		Category:    tx.Category,
		AmountCents: tx.Amount.Cents,
		Date:        tx.Date.String(),
		Description: tx.Description,
		Timestamp:   time.Now().UTC(),
	}
}

// Transaction rebuilds the ledger record carried by the event.
func (e *TransactionEvent) Transaction() (core.Transaction, error) {
	date, err := core.ParseDate(e.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:          e.ID,
		UserID:      e.UserID,
		Kind:        e.Kind,
		Category:    e.Category,
		Amount:      core.Money{Cents: e.AmountCents},
		Date:        date,
		Description: e.Description,
	}, nil
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes and sanity-checks an event body.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if !ev.Action.Valid() {
		return nil, fmt.Errorf("unknown action %q", ev.Action)
	}
	if !ev.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidKind, ev.Kind)
	}
	if ev.ID <= 0 {
		return nil, fmt.Errorf("invalid transaction id %d", ev.ID)
	}
	return &ev, nil
}
