package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	applog "fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/sheets"
)

// LedgerWorker exports ledger events, one audit row per event.
type LedgerWorker struct {
	writer  sheets.LedgerWriter
	metrics *metrics.Metrics
}

// NewLedgerWorker creates a worker. A nil writer makes the worker log events
// without exporting them.
func NewLedgerWorker(writer sheets.LedgerWriter, m *metrics.Metrics) *LedgerWorker {
	return &LedgerWorker{writer: writer, metrics: m}
}

// HandleEvent processes a single ledger event from AMQP. A returned error
// asks the broker to redeliver the event.
func (w *LedgerWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) (err error) {
	defer func() { w.metrics.EventConsumed(err) }()

	logger := applog.Component(slog.Default(), applog.ComponentWorker).With(
		applog.FieldAction, string(ev.Action),
		applog.FieldKind, ev.Kind.String(),
		applog.FieldTransactionID, ev.ID,
		applog.FieldUserID, ev.UserID)

	row, convErr := sheets.RowFromEvent(ev)
	if convErr != nil {
		// Redelivery cannot fix a malformed record.
		logger.ErrorContext(ctx, "Dropping malformed ledger event", applog.FieldError, convErr)
		return nil
	}

	if w.writer == nil {
		logger.InfoContext(ctx, "Ledger event received",
			applog.FieldCategory, row.Category,
			applog.FieldAmountCents, ev.AmountCents,
			applog.FieldDate, row.Date)
		return nil
	}

	ref, err := w.writer.AppendRow(ctx, row)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to export ledger event", applog.FieldError, err)
		return fmt.Errorf("append ledger row: %w", err)
	}

	w.metrics.RowExported()
	logger.InfoContext(ctx, "Exported ledger event", "sheets_ref", ref)
	return nil
}
