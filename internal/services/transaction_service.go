package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/storage"
)

// EventPublisher sends ledger events to the export worker.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev *amqp.TransactionEvent) error
}

// DeleteResult is the JSON body returned by the delete routes.
type DeleteResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// TransactionService owns every expense and income mutation. All reads for
// editing, updates and deletes pass through owned, so a user can only ever
// touch their own records.
type TransactionService struct {
	store   storage.TransactionStore
	events  EventPublisher
	metrics *metrics.Metrics
	today   func() core.Date
}

// NewTransactionService wires the service. events and m may be nil.
func NewTransactionService(store storage.TransactionStore, events EventPublisher, m *metrics.Metrics) *TransactionService {
	return &TransactionService{
		store:   store,
		events:  events,
		metrics: m,
		today:   func() core.Date { return core.DateOf(time.Now()) },
	}
}

// Add validates in and stores it as a new record owned by userID.
func (s *TransactionService) Add(ctx context.Context, userID int64, kind core.Kind, in core.TransactionInput) (core.Transaction, error) {
	if err := checkCaller(userID, kind); err != nil {
		return core.Transaction{}, err
	}

	tx, err := in.Build(kind, userID, s.today())
	if err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.CreateTransaction(ctx, &tx); err != nil {
		return core.Transaction{}, fmt.Errorf("create %s: %w", kind, err)
	}

	s.record(ctx, applog.OpCreate, amqp.ActionCreated, tx)
	return tx, nil
}

// Get returns a record for editing.
func (s *TransactionService) Get(ctx context.Context, userID int64, kind core.Kind, id int64) (core.Transaction, error) {
	if err := checkCaller(userID, kind); err != nil {
		return core.Transaction{}, err
	}
	tx, err := s.owned(ctx, userID, kind, id)
	if err != nil {
		return core.Transaction{}, err
	}
	return *tx, nil
}

// Update replaces the editable fields of a record. An empty date keeps the
// stored one.
func (s *TransactionService) Update(ctx context.Context, userID int64, kind core.Kind, id int64, in core.TransactionInput) (core.Transaction, error) {
	if err := checkCaller(userID, kind); err != nil {
		return core.Transaction{}, err
	}

	existing, err := s.owned(ctx, userID, kind, id)
	if err != nil {
		return core.Transaction{}, err
	}

	updated, err := in.Build(kind, userID, existing.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	if err := s.store.UpdateTransaction(ctx, &updated); err != nil {
		return core.Transaction{}, fmt.Errorf("update %s %d: %w", kind, id, err)
	}

	s.record(ctx, applog.OpUpdate, amqp.ActionUpdated, updated)
	return updated, nil
}

// Delete removes a record. A missing or foreign record yields a failed
// result together with core.ErrNotFound and leaves the store unchanged.
func (s *TransactionService) Delete(ctx context.Context, userID int64, kind core.Kind, id int64) (DeleteResult, error) {
	if err := checkCaller(userID, kind); err != nil {
		return DeleteResult{Error: err.Error()}, err
	}

	existing, err := s.owned(ctx, userID, kind, id)
	if errors.Is(err, core.ErrNotFound) {
		return DeleteResult{Error: kind.Title() + " not found"}, err
	}
	if err != nil {
		return DeleteResult{Error: "failed to delete " + kind.String()}, err
	}

	if err := s.store.DeleteTransaction(ctx, kind, userID, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return DeleteResult{Error: kind.Title() + " not found"}, err
		}
		return DeleteResult{Error: "failed to delete " + kind.String()}, fmt.Errorf("delete %s %d: %w", kind, id, err)
	}

	s.record(ctx, applog.OpDelete, amqp.ActionDeleted, *existing)
	return DeleteResult{Success: true}, nil
}

// List returns the caller's records of one kind matching f.
func (s *TransactionService) List(ctx context.Context, kind core.Kind, f core.Filter) ([]core.Transaction, error) {
	if err := checkCaller(f.UserID, kind); err != nil {
		return nil, err
	}
	out, err := s.store.ListTransactions(ctx, kind, f)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return out, nil
}

// owned loads a record and checks it belongs to userID. Records owned by
// someone else are reported as core.ErrNotFound so their existence is not
// revealed.
func (s *TransactionService) owned(ctx context.Context, userID int64, kind core.Kind, id int64) (*core.Transaction, error) {
	if id <= 0 {
		return nil, core.ErrNotFound
	}
	tx, err := s.store.Transaction(ctx, kind, id)
	if errors.Is(err, core.ErrNotFound) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s %d: %w", kind, id, err)
	}
	if tx.UserID != userID {
		slog.WarnContext(ctx, "Rejected access to foreign record",
			applog.FieldComponent, applog.ComponentLedger,
			applog.FieldKind, kind.String(),
			applog.FieldTransactionID, id,
			applog.FieldUserID, userID)
		return nil, core.ErrNotFound
	}
	return tx, nil
}

func checkCaller(userID int64, kind core.Kind) error {
	if userID <= 0 {
		return core.ErrNotAuthenticated
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidKind, kind)
	}
	return nil
}

// record logs and counts a successful mutation, then publishes its event.
// Publishing never fails the caller: the record is already stored.
func (s *TransactionService) record(ctx context.Context, op string, action amqp.Action, tx core.Transaction) {
	s.metrics.TransactionChanged(tx.Kind.String(), op)

	fields := applog.NewFields().
		WithComponent(applog.ComponentLedger).
		WithOperation(op).
		WithTransaction(tx)
	applog.FromContext(ctx).InfoContext(ctx, "Ledger record "+string(action), fields.ToSlice()...)

	if s.events == nil {
		return
	}
	err := s.events.PublishEvent(ctx, amqp.NewTransactionEvent(action, tx))
	s.metrics.EventPublished(err)
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Failed to publish ledger event",
			append(fields.WithError(err).ToSlice(), applog.FieldAction, string(action))...)
	}
}
