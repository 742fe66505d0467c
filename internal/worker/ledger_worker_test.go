package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/metrics"
	"fintrack/internal/sheets"
	"fintrack/internal/sheets/memory"
)

type failingWriter struct{}

func (failingWriter) AppendRow(context.Context, sheets.LedgerRow) (string, error) {
	return "", errors.New("quota exceeded")
}

func event(action amqp.Action) *amqp.TransactionEvent {
	return amqp.NewTransactionEvent(action, core.Transaction{
		ID:       5,
		UserID:   1,
		Kind:     core.KindExpense,
		Category: "Food",
		Amount:   core.Money{Cents: 1250},
		Date:     core.NewDate(2025, 2, 3),
	})
}

func TestLedgerWorker_Exports(t *testing.T) {
	store := memory.New()
	m := metrics.New()
	w := NewLedgerWorker(store, m)

	require.NoError(t, w.HandleEvent(context.Background(), event(amqp.ActionCreated)))
	require.NoError(t, w.HandleEvent(context.Background(), event(amqp.ActionDeleted)))

	rows := store.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, amqp.ActionCreated, rows[0].Action)
	assert.Equal(t, amqp.ActionDeleted, rows[1].Action)
	assert.Equal(t, "12.50", rows[0].Amount)
	assert.Equal(t, "2025-02-03", rows[0].Date)
	assert.WithinDuration(t, time.Now(), rows[0].Timestamp, time.Minute)
	assert.Equal(t, 2.0, counterValue(t, m, "fintrack_sheet_rows_exported_total"))
	assert.Equal(t, 2.0, counterValue(t, m, "fintrack_ledger_events_total"))
}

func TestLedgerWorker_WriterFailureRequestsRedelivery(t *testing.T) {
	m := metrics.New()
	w := NewLedgerWorker(failingWriter{}, m)

	err := w.HandleEvent(context.Background(), event(amqp.ActionUpdated))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Zero(t, counterValue(t, m, "fintrack_sheet_rows_exported_total"))
}

func TestLedgerWorker_WithoutWriterLogsOnly(t *testing.T) {
	w := NewLedgerWorker(nil, nil)
	assert.NoError(t, w.HandleEvent(context.Background(), event(amqp.ActionCreated)))
}

func TestLedgerWorker_DropsMalformedEvent(t *testing.T) {
	store := memory.New()
	w := NewLedgerWorker(store, nil)

	ev := event(amqp.ActionCreated)
	ev.Date = "not-a-date"
	assert.NoError(t, w.HandleEvent(context.Background(), ev), "malformed events are acked, not redelivered")
	assert.Empty(t, store.Rows())
}

// counterValue sums every series of the named counter family.
func counterValue(t *testing.T, m *metrics.Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	total := 0.0
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}
